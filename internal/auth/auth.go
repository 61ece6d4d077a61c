// Package auth stores the ViewEngine API key for the viewctl CLI.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EnvAPIKey is the environment variable consulted before the
// credentials file.
const EnvAPIKey = "VIEWENGINE_API_KEY"

// Credentials is the on-disk credential record.
type Credentials struct {
	APIKey    string `json:"api_key"`
	CreatedAt int64  `json:"created_at"`
}

// Manager handles credential load and storage. The API key itself is
// opaque to the rest of the client; it is attached to requests as-is
// and never mutated.
type Manager struct {
	configDir   string
	mu          sync.RWMutex
	credentials *Credentials
}

// NewManager creates a manager rooted at ~/.viewctl.
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewManagerAt(filepath.Join(homeDir, ".viewctl"))
}

// NewManagerAt creates a manager rooted at the given directory.
func NewManagerAt(configDir string) (*Manager, error) {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{configDir: configDir}

	// Try to load existing credentials
	_ = m.loadCredentials()

	return m, nil
}

// APIKey returns the stored key, preferring the environment variable.
// Empty means no key is configured.
func (m *Manager) APIKey() string {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.credentials == nil {
		return ""
	}
	return m.credentials.APIKey
}

// SetKey stores the key on disk.
func (m *Manager) SetKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}

	m.mu.Lock()
	m.credentials = &Credentials{
		APIKey:    key,
		CreatedAt: time.Now().Unix(),
	}
	m.mu.Unlock()

	return m.saveCredentials()
}

// Clear removes the stored key.
func (m *Manager) Clear() error {
	m.mu.Lock()
	m.credentials = nil
	m.mu.Unlock()

	if err := os.Remove(m.credentialsPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// credentialsPath returns the path to the credentials file.
func (m *Manager) credentialsPath() string {
	return filepath.Join(m.configDir, "credentials.json")
}

// loadCredentials loads credentials from disk.
func (m *Manager) loadCredentials() error {
	data, err := os.ReadFile(m.credentialsPath())
	if err != nil {
		return err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return err
	}

	m.mu.Lock()
	m.credentials = &creds
	m.mu.Unlock()

	return nil
}

// saveCredentials saves credentials to disk.
func (m *Manager) saveCredentials() error {
	m.mu.RLock()
	creds := m.credentials
	m.mu.RUnlock()

	if creds == nil {
		return nil
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(m.credentialsPath(), data, 0o600)
}

// MaskKey renders a key safe for display, keeping only the edges.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
