// Package filestore implements a small JSON keyspace on the local
// filesystem. Each record is one file; writes go to a temporary file
// first and are moved into place with an atomic rename, so a concurrent
// reader never observes a partially written record.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/quackd/quack/internal/errors"
)

const fileExt = ".json"

// validName guards against path-traversal style keys built from
// untrusted input. Keys are opaque identifiers, never paths.
var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("filestore.New %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", errors.ErrNotFound
	}
	return filepath.Join(s.dir, name+fileExt), nil
}

// Put marshals v and atomically replaces the record under name.
func (s *Store) Put(name string, v any) error {
	file, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "filestore.Put marshal %q", name)
	}
	tmp := file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "filestore.Put write %q", name)
	}
	if err := os.Rename(tmp, file); err != nil {
		return errors.Wrapf(err, "filestore.Put rename %q", name)
	}
	return nil
}

// Get unmarshals the record under name into v. Returns ErrNotFound when
// no record exists.
func (s *Store) Get(name string, v any) error {
	file, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return errors.ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "filestore.Get read %q", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "filestore.Get unmarshal %q", name)
	}
	return nil
}

// Delete removes the record under name. Deleting an absent record is
// not an error.
func (s *Store) Delete(name string) error {
	file, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "filestore.Delete %q", name)
	}
	return nil
}

// Names lists record names carrying the given prefix. Pass "" for all.
func (s *Store) Names(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "filestore.Names")
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		name = strings.TrimSuffix(name, fileExt)
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Touch refreshes the record's modification time, keeping it alive
// against SweepOlderThan.
func (s *Store) Touch(name string) error {
	file, err := s.path(name)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := os.Chtimes(file, now, now); err != nil {
		if os.IsNotExist(err) {
			return errors.ErrNotFound
		}
		return errors.Wrapf(err, "filestore.Touch %q", name)
	}
	return nil
}

// SweepOlderThan removes records with the given prefix whose last
// modification is before cutoff. Records vanishing mid-sweep are
// skipped; the sweep is best-effort over a live keyspace.
func (s *Store) SweepOlderThan(prefix string, cutoff time.Time) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return errors.Wrapf(err, "filestore.SweepOlderThan")
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(s.dir, name))
		}
	}
	return nil
}
