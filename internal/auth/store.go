package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ytmb/internal/shared"
)

// FileStore persists a single credential as JSON at a configurable path.
//
// Saves are atomic: the document is written to a temp file in the same
// directory and renamed over the target, so a concurrent Load never observes
// a torn file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore rooted at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the credential file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted credential.
//
// A missing file is the recoverable "not authenticated" condition and is
// reported as [shared.ErrNotAuthenticated].
func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no credential at %s", shared.ErrNotAuthenticated, s.path)
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}

	if err := cred.Validate(); err != nil {
		return nil, fmt.Errorf("stored credential invalid: %w", err)
	}

	return &cred, nil
}

// Save writes the credential atomically with 0600 permissions.
func (s *FileStore) Save(cred *Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, shared.GenerateID())
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace credential file: %w", err)
	}

	return nil
}

// Clear removes the persisted credential. Removing an absent file is not an
// error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}
