// Package prefs is the runtime's durable key/value storage, the counterpart
// of the per-origin browser storage the guide relies on for its small set of
// flags: the "remember me" opt-out, the reminders-enabled preference, and the
// persisted auth session.
package prefs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Well-known keys.
const (
	KeyNoRemember       = "no_remember"
	KeyRemindersEnabled = "reminders_enabled"
	KeySession          = "session"
)

// Store is a file-backed string map. Reads are served from memory; every
// write is persisted before it returns.
type Store struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// Open loads the store at path, creating an empty one when the file does not
// exist yet.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("prefs path is empty")
	}
	s := &Store{path: path, values: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the stored value for key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// GetBool reads key as a boolean, returning def when unset.
func (s *Store) GetBool(key string, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	return v == "true"
}

// Set stores and persists key=value.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.save()
}

// SetBool stores key as "true"/"false".
func (s *Store) SetBool(key string, value bool) error {
	if value {
		return s.Set(key, "true")
	}
	return s.Set(key, "false")
}

// Delete removes key and persists the change. Deleting a missing key is a
// no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.save()
}

// save writes the map atomically: temp file in the same directory, fsync,
// chmod 0600, rename over the target.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".festguide-prefs-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
