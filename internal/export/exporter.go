// Package export writes one pipeline run's artifacts to a timestamped
// directory tree and maintains a "latest" pointer per account.
package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alx/twitter-scraper-finetune/internal/analytics"
	"github.com/alx/twitter-scraper-finetune/internal/types"
)

// Exporter persists run artifacts under baseDir/<handle>/<epoch-seconds>/.
// Run directories are written once and never cleaned up here; retention is an
// external concern.
type Exporter struct {
	baseDir string
	now     func() time.Time
}

// Option configures the Exporter.
type Option func(*Exporter)

// WithClock overrides the time source used to name run directories (useful
// for testing).
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// New creates an Exporter rooted at baseDir.
func New(baseDir string, opts ...Option) *Exporter {
	e := &Exporter{
		baseDir: baseDir,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Persist writes all artifacts for one run: raw posts and URLs, finetuning
// data, analytics, the markdown summary, and the Atom feed. It then rewrites
// the account's latest pointer; a pointer failure is logged but not returned,
// since the run directory itself is already complete.
func (e *Exporter) Persist(profile types.Profile, posts []types.Post, stats analytics.Analytics) error {
	handle := profile.Username
	runDir := filepath.Join(e.baseDir, handle, strconv.FormatInt(e.now().Unix(), 10))

	for _, sub := range []string{"raw", "processed", "analytics", "exports", "meta"} {
		if err := os.MkdirAll(filepath.Join(runDir, sub), 0755); err != nil {
			return fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	if err := writeJSON(filepath.Join(runDir, "raw", "posts.json"), posts); err != nil {
		return err
	}
	if err := e.writeURLs(filepath.Join(runDir, "raw", "urls.txt"), posts); err != nil {
		return err
	}
	if err := e.writeFinetuning(filepath.Join(runDir, "processed", "finetuning.jsonl"), posts); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(runDir, "analytics", "stats.json"), stats); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(runDir, "exports", "summary.md"), []byte(renderSummary(profile, stats)), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	feed, err := renderAtom(handle, posts, e.now())
	if err != nil {
		return fmt.Errorf("failed to render atom feed: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "exports", "feed.atom"), feed, 0644); err != nil {
		return fmt.Errorf("failed to write atom feed: %w", err)
	}

	e.updateLatest(handle, runDir)

	log.Printf("Exported %d posts to %s", len(posts), runDir)
	return nil
}

// updateLatest repoints baseDir/<handle>/latest at the new run directory.
// Non-fatal: a stale or missing pointer only affects resume-token lookup,
// which already tolerates absence.
func (e *Exporter) updateLatest(handle, runDir string) {
	link := filepath.Join(e.baseDir, handle, "latest")
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not remove latest pointer %s: %v", link, err)
	}
	if err := os.Symlink(filepath.Base(runDir), link); err != nil {
		log.Printf("Warning: could not create latest pointer %s: %v", link, err)
	}
}

// LastResumeToken returns the pagination cursor saved by the account's most
// recent run, or "" when no prior run or token exists. Tokens are advisory: a
// missing or unreadable one just means a full re-scrape.
func (e *Exporter) LastResumeToken(handle string) string {
	path := filepath.Join(e.baseDir, handle, "latest", "meta", "next_token.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveResumeToken writes the cursor into the account's latest run directory.
// An empty token is skipped.
func (e *Exporter) SaveResumeToken(handle, token string) error {
	if token == "" {
		return nil
	}
	path := filepath.Join(e.baseDir, handle, "latest", "meta", "next_token.txt")
	if err := os.WriteFile(path, []byte(token), 0644); err != nil {
		return fmt.Errorf("failed to save resume token: %w", err)
	}
	return nil
}

func (e *Exporter) writeURLs(path string, posts []types.Post) error {
	var b strings.Builder
	for _, p := range posts {
		if p.PermanentURL == "" {
			continue
		}
		b.WriteString(p.PermanentURL)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write urls: %w", err)
	}
	return nil
}

func (e *Exporter) writeFinetuning(path string, posts []types.Post) error {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	for _, entry := range FinetuningEntries(posts) {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode finetuning entry: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write finetuning data: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
