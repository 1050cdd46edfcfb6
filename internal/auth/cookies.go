// Package auth stores the twitter.com session cookies used by the live feed
// source. There is no interactive login flow here; cookies are captured out
// of band and this package only persists and validates them.
package auth

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
)

// ErrNoSession indicates that no usable session cookies are stored.
var ErrNoSession = errors.New("no valid session cookies stored")

// CookieStore handles storage of session cookies
type CookieStore struct {
	path string
}

// StoredCookies represents the persisted cookie data
type StoredCookies struct {
	Cookies    []*network.Cookie `json:"cookies"`
	CapturedAt time.Time         `json:"captured_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// NewCookieStore creates a cookie store at the given path
func NewCookieStore(path string) *CookieStore {
	return &CookieStore{path: path}
}

// Save persists cookies to disk
func (cs *CookieStore) Save(cookies []*network.Cookie) error {
	dir := filepath.Dir(cs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// Track the earliest expiration among the auth-bearing cookies
	var earliestExpiry time.Time
	for _, c := range cookies {
		if c.Name == "auth_token" || c.Name == "ct0" {
			exp := time.Unix(int64(c.Expires), 0)
			if earliestExpiry.IsZero() || exp.Before(earliestExpiry) {
				earliestExpiry = exp
			}
		}
	}

	stored := StoredCookies{
		Cookies:    cookies,
		CapturedAt: time.Now(),
		ExpiresAt:  earliestExpiry,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cs.path, data, 0600)
}

// Load retrieves cookies from disk, failing with ErrNoSession when the file
// is absent or the session has expired.
func (cs *CookieStore) Load() (*StoredCookies, error) {
	data, err := os.ReadFile(cs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var stored StoredCookies
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	if !stored.ExpiresAt.IsZero() && time.Now().After(stored.ExpiresAt) {
		return nil, ErrNoSession
	}

	return &stored, nil
}

// IsValid checks if stored cookies are still usable
func (cs *CookieStore) IsValid() bool {
	_, err := cs.Load()
	return err == nil
}
