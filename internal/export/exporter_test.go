package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alx/twitter-scraper-finetune/internal/analytics"
	"github.com/alx/twitter-scraper-finetune/internal/types"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testPosts() []types.Post {
	return []types.Post{
		{
			ID:           "100",
			Username:     "someuser",
			Text:         "A tweet about things https://example.com/page #stuff",
			Timestamp:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			Likes:        12,
			PermanentURL: "https://twitter.com/someuser/status/100",
		},
		{
			ID:           "101",
			Username:     "someuser",
			Text:         "Another tweet",
			IsRetweet:    true,
			PermanentURL: "https://twitter.com/someuser/status/101",
		},
	}
}

func TestPersist_WritesFullRunDirectoryLayout(t *testing.T) {
	base := t.TempDir()
	runTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	e := New(base, WithClock(fixedClock(runTime)))

	posts := testPosts()
	if err := e.Persist(types.Profile{Username: "someuser"}, posts, analytics.Analyze(posts)); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	runDir := filepath.Join(base, "someuser", "1717243200")
	for _, rel := range []string{
		"raw/posts.json",
		"raw/urls.txt",
		"processed/finetuning.jsonl",
		"analytics/stats.json",
		"exports/summary.md",
		"exports/feed.atom",
	} {
		if _, err := os.Stat(filepath.Join(runDir, rel)); err != nil {
			t.Errorf("expected artifact %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(runDir, "meta")); err != nil {
		t.Errorf("expected meta directory: %v", err)
	}
}

func TestPersist_RawArtifactsRoundTrip(t *testing.T) {
	base := t.TempDir()
	runTime := time.Unix(1700000000, 0)
	e := New(base, WithClock(fixedClock(runTime)))

	posts := testPosts()
	if err := e.Persist(types.Profile{Username: "someuser"}, posts, analytics.Analyze(posts)); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	runDir := filepath.Join(base, "someuser", "1700000000")

	data, err := os.ReadFile(filepath.Join(runDir, "raw", "posts.json"))
	if err != nil {
		t.Fatalf("read posts.json: %v", err)
	}
	var loaded []types.Post
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("parse posts.json: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "100" {
		t.Errorf("unexpected raw posts: %+v", loaded)
	}

	urls, err := os.ReadFile(filepath.Join(runDir, "raw", "urls.txt"))
	if err != nil {
		t.Fatalf("read urls.txt: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(urls)), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 url lines, got %d", len(lines))
	}
}

func TestPersist_SummaryIncludesProfileDetails(t *testing.T) {
	base := t.TempDir()
	e := New(base, WithClock(fixedClock(time.Unix(5000, 0))))

	posts := testPosts()
	profile := types.Profile{Username: "someuser", Name: "Some User", FollowersCount: 1234}
	if err := e.Persist(profile, posts, analytics.Analyze(posts)); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "someuser", "5000", "exports", "summary.md"))
	if err != nil {
		t.Fatalf("read summary.md: %v", err)
	}
	summary := string(data)
	if !strings.Contains(summary, "Account: Some User (@someuser)") {
		t.Errorf("expected account line in summary, got:\n%s", summary)
	}
	if !strings.Contains(summary, "Followers: 1234") {
		t.Errorf("expected followers line in summary, got:\n%s", summary)
	}
}

func TestPersist_SummaryOmitsUnknownProfileDetails(t *testing.T) {
	base := t.TempDir()
	e := New(base, WithClock(fixedClock(time.Unix(6000, 0))))

	posts := testPosts()
	if err := e.Persist(types.Profile{Username: "someuser"}, posts, analytics.Analyze(posts)); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "someuser", "6000", "exports", "summary.md"))
	if err != nil {
		t.Fatalf("read summary.md: %v", err)
	}
	summary := string(data)
	if strings.Contains(summary, "Account:") || strings.Contains(summary, "Followers:") {
		t.Errorf("expected no profile lines for a bare handle, got:\n%s", summary)
	}
}

func TestPersist_RewritesLatestPointer(t *testing.T) {
	base := t.TempDir()
	posts := testPosts()
	stats := analytics.Analyze(posts)

	e1 := New(base, WithClock(fixedClock(time.Unix(1000, 0))))
	if err := e1.Persist(types.Profile{Username: "someuser"}, posts, stats); err != nil {
		t.Fatalf("first persist failed: %v", err)
	}
	e2 := New(base, WithClock(fixedClock(time.Unix(2000, 0))))
	if err := e2.Persist(types.Profile{Username: "someuser"}, posts, stats); err != nil {
		t.Fatalf("second persist failed: %v", err)
	}

	target, err := os.Readlink(filepath.Join(base, "someuser", "latest"))
	if err != nil {
		t.Fatalf("read latest pointer: %v", err)
	}
	if target != "2000" {
		t.Errorf("expected latest -> 2000, got %s", target)
	}
}

func TestResumeToken_MissingFileMeansNoPriorRun(t *testing.T) {
	e := New(t.TempDir())

	if token := e.LastResumeToken("nobody"); token != "" {
		t.Errorf("expected empty token for unknown account, got %q", token)
	}
}

func TestResumeToken_RoundTripThroughLatestRun(t *testing.T) {
	base := t.TempDir()
	e := New(base, WithClock(fixedClock(time.Unix(3000, 0))))

	posts := testPosts()
	if err := e.Persist(types.Profile{Username: "someuser"}, posts, analytics.Analyze(posts)); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if err := e.SaveResumeToken("someuser", "cursor-abc"); err != nil {
		t.Fatalf("save token failed: %v", err)
	}

	if token := e.LastResumeToken("someuser"); token != "cursor-abc" {
		t.Errorf("expected cursor-abc, got %q", token)
	}
}

func TestPersist_FinetuningOnlyContainsEligiblePosts(t *testing.T) {
	base := t.TempDir()
	e := New(base, WithClock(fixedClock(time.Unix(4000, 0))))

	posts := testPosts() // one eligible original, one retweet
	if err := e.Persist(types.Profile{Username: "someuser"}, posts, analytics.Analyze(posts)); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "someuser", "4000", "processed", "finetuning.jsonl"))
	if err != nil {
		t.Fatalf("read finetuning.jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 finetuning line, got %d", len(lines))
	}
	var entry FinetuningEntry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("parse finetuning line: %v", err)
	}
	if strings.Contains(entry.Text, "https://") || strings.Contains(entry.Text, "#stuff") {
		t.Errorf("expected cleaned text, got %q", entry.Text)
	}
}
