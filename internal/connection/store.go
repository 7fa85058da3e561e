// Package connection stores the companion's gateway pairing credentials.
// The pairing exchange itself happens elsewhere; this package is only the
// local credential store other components consult.
package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotPaired is returned when no credentials are stored.
var ErrNotPaired = errors.New("not paired with a gateway")

// Credentials identify a paired gateway.
type Credentials struct {
	GatewayURL  string `json:"gateway_url"`
	CompanionID string `json:"companion_id"`
	Role        string `json:"role"`
}

// Store reads and writes credentials under a directory. The directory is a
// protected zone for the safety engine: actions may never touch it.
type Store struct {
	dir string
}

// NewStore creates a credential store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's directory, for protected-zone registration.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path() string {
	return filepath.Join(s.dir, "credentials.json")
}

// Load returns the stored credentials, or ErrNotPaired.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotPaired
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("decoding credentials: %w", err)
	}
	if creds.GatewayURL == "" {
		return nil, ErrNotPaired
	}
	return &creds, nil
}

// Save persists credentials with owner-only permissions.
func (s *Store) Save(creds Credentials) error {
	if creds.GatewayURL == "" {
		return fmt.Errorf("gateway URL is required")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating credential dir: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// Delete removes stored credentials. Deleting when not paired is not an
// error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	return nil
}
