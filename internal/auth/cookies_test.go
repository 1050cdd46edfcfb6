package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestCookieStore_MissingFileMeansNoSession(t *testing.T) {
	cs := NewCookieStore(filepath.Join(t.TempDir(), "cookies.json"))

	if _, err := cs.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
	if cs.IsValid() {
		t.Error("store without a file must not be valid")
	}
}

func TestCookieStore_RoundTrip(t *testing.T) {
	cs := NewCookieStore(filepath.Join(t.TempDir(), "cookies.json"))

	cookies := []*network.Cookie{
		{Name: "auth_token", Value: "v", Domain: ".twitter.com", Expires: float64(time.Now().Add(24 * time.Hour).Unix())},
	}
	if err := cs.Save(cookies); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	stored, err := cs.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(stored.Cookies) != 1 || stored.Cookies[0].Name != "auth_token" {
		t.Errorf("unexpected cookies: %+v", stored.Cookies)
	}
	if !cs.IsValid() {
		t.Error("freshly saved session must be valid")
	}
}

func TestCookieStore_ExpiredSessionIsInvalid(t *testing.T) {
	cs := NewCookieStore(filepath.Join(t.TempDir(), "cookies.json"))

	cookies := []*network.Cookie{
		{Name: "auth_token", Value: "v", Expires: float64(time.Now().Add(-time.Hour).Unix())},
	}
	if err := cs.Save(cookies); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := cs.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession for expired cookies, got %v", err)
	}
}
