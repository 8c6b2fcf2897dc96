// Package credentials caches NRF-minted access tokens for 5gctl so
// repeated invocations reuse a bearer until it expires.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultConfigDir is the directory under XDG_CONFIG_HOME holding the cache.
	DefaultConfigDir = "5gctl"
	// CacheFileName is the name of the token cache file.
	CacheFileName = "tokens.json"
	// FilePermissions for the cache file (read/write for owner only).
	FilePermissions = 0600
	// DirPermissions for the cache directory.
	DirPermissions = 0700
)

// expirySkew treats a token as expired slightly before its deadline so
// an in-flight request never carries a bearer the NRF already rejects.
const expirySkew = 60 * time.Second

// Token is one cached access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be presented.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" || t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(expirySkew).Before(t.ExpiresAt)
}

// Store manages the on-disk token cache. Entries are keyed by NRF URL
// and requester NF type, so tokens minted against different registries
// or for different NF identities never mix.
type Store struct {
	path   string
	tokens map[string]*Token
}

// NewStore opens the cache at the default path, creating an empty cache
// when none exists yet.
func NewStore() (*Store, error) {
	path, err := defaultPath()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(path)
}

// NewStoreAt opens the cache at an explicit path.
func NewStoreAt(path string) (*Store, error) {
	s := &Store{path: path, tokens: make(map[string]*Token)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.tokens); err != nil {
		return nil, fmt.Errorf("token cache %s is corrupt: %w", path, err)
	}
	return s, nil
}

func defaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, DefaultConfigDir, CacheFileName), nil
}

// Lookup returns the cached token for the registry and requester, or
// nil when the cache holds none that is still valid.
func (s *Store) Lookup(nrfURL, requester string) *Token {
	t := s.tokens[cacheKey(nrfURL, requester)]
	if !t.Valid() {
		return nil
	}
	return t
}

// Put records a freshly minted token and persists the cache.
func (s *Store) Put(nrfURL, requester, accessToken string, expiresAt time.Time) error {
	s.tokens[cacheKey(nrfURL, requester)] = &Token{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}
	return s.save()
}

// Clear drops every cached token and persists the empty cache.
func (s *Store) Clear() error {
	s.tokens = make(map[string]*Token)
	return s.save()
}

// Path returns the location of the cache file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), DirPermissions); err != nil {
		return fmt.Errorf("cannot create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(s.tokens, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, FilePermissions)
}

func cacheKey(nrfURL, requester string) string {
	return requester + "@" + nrfURL
}
