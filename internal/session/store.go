package session

import (
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// Store persists session cookies between runs, the way a browser keeps
// them across reloads.
type Store struct {
	path string
}

type storedCookie struct {
	Name  string
	Value string
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "session.gob")}
}

func (s *Store) Save(cookies []*http.Cookie) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	enc := gob.NewEncoder(file)
	return enc.Encode(stored)
}

// Load returns the saved cookies; no saved session is not an error.
func (s *Store) Load() ([]*http.Cookie, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	var stored []storedCookie
	dec := gob.NewDecoder(file)
	if err := dec.Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}

func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
