// Package ssocache inspects the AWS CLI's SSO token cache
// (~/.aws/sso/cache/*.json). The cache is owned by the AWS CLI; this
// package only reads expiration metadata, never credential material.
package ssocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoToken is returned when the cache directory holds no token files.
var ErrNoToken = errors.New("no sso token in cache")

// Token is the expiration metadata of one cached SSO token.
type Token struct {
	Path      string
	ExpiresAt time.Time
	StartURL  string
	Region    string
}

// TimeUntilExpiry returns the remaining validity relative to now. Negative
// when already expired.
func (t Token) TimeUntilExpiry(now time.Time) time.Duration {
	return t.ExpiresAt.Sub(now)
}

// Inspector reads the token cache directory.
type Inspector struct {
	dir string
}

// New creates an Inspector. An empty dir defaults to ~/.aws/sso/cache.
func New(dir string) *Inspector {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(home, ".aws", "sso", "cache")
		}
	}
	return &Inspector{dir: dir}
}

type cacheEntry struct {
	ExpiresAt    string `json:"expiresAt"`
	StartURL     string `json:"startUrl"`
	Region       string `json:"region"`
	ClientSecret string `json:"clientSecret"`
}

// Latest returns the most recently modified token in the cache. Files
// without an expiresAt field (client registration records) are skipped.
func (i *Inspector) Latest() (Token, error) {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Token{}, ErrNoToken
		}
		return Token{}, fmt.Errorf("read sso cache dir: %w", err)
	}

	var (
		best      Token
		bestMtime time.Time
		found     bool
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(i.dir, entry.Name())
		tok, ok := readEntry(path)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !found || info.ModTime().After(bestMtime) {
			best, bestMtime, found = tok, info.ModTime(), true
		}
	}
	if !found {
		return Token{}, ErrNoToken
	}
	return best, nil
}

func readEntry(path string) (Token, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Token{}, false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return Token{}, false
	}
	if e.ExpiresAt == "" || e.ClientSecret != "" {
		// Registration records carry a clientSecret and no usable token.
		return Token{}, false
	}
	expires, err := parseExpiry(e.ExpiresAt)
	if err != nil {
		return Token{}, false
	}
	return Token{Path: path, ExpiresAt: expires, StartURL: e.StartURL, Region: e.Region}, true
}

// parseExpiry tolerates both RFC 3339 and the legacy "UTC" suffix the CLI
// used to write.
func parseExpiry(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05UTC", s)
}
