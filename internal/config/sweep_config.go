package config

import (
	"strconv"
	"time"
)

type SweepConfig interface {
	GetSessionRetention() time.Duration
	GetTokenSweepInterval() time.Duration
	GetSessionSweepInterval() time.Duration
}

type Sweep struct{}

var _ SweepConfig = Sweep{}

// GetSessionRetention is how long an untouched session record survives
// before the sweeper removes it.
func (Sweep) GetSessionRetention() time.Duration {
	return getDurationEnv("SESSION_RETENTION", 30*24*time.Hour)
}

// GetTokenSweepInterval is how often expired redirect tokens are swept.
// Redirect tokens live for minutes, so they are swept on a much tighter
// schedule than sessions.
func (Sweep) GetTokenSweepInterval() time.Duration {
	return getDurationEnv("TOKEN_SWEEP_INTERVAL", 1*time.Minute)
}

func (Sweep) GetSessionSweepInterval() time.Duration {
	return getDurationEnv("SESSION_SWEEP_INTERVAL", 1*time.Hour)
}

func getIntEnv(envVar string, defaultValue int) int {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
