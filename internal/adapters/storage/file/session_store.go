// Package file persists the client session in a single JSON slot on disk.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pollbooth/pollbooth/internal/core/domain"
	"github.com/pollbooth/pollbooth/internal/core/ports"
)

type SessionStore struct {
	path string
}

func NewSessionStore(path string) ports.SessionStore {
	return &SessionStore{path: path}
}

func (s *SessionStore) Load() (domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Session{}, domain.ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to read session slot: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.Session{}, domain.ErrMalformedSession
	}
	if !session.Present() {
		return domain.Session{}, domain.ErrMalformedSession
	}
	return session, nil
}

func (s *SessionStore) Save(session domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session slot: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
