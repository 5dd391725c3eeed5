package config

type StorageConfig interface {
	GetStorageBackend() string
	GetDataFolder() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStorageBackend selects the session store implementation: "file"
// (default) or "redis".
func (Storage) GetStorageBackend() string {
	return GetEnv("STORAGE_BACKEND", "file")
}

func (Storage) GetDataFolder() string {
	return GetEnv("FOLDER", "./data")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return getIntEnv("REDIS_DB", 0)
}
