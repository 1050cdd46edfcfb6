package export

import (
	"regexp"
	"strings"

	"github.com/alx/twitter-scraper-finetune/internal/types"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	hashtagPattern = regexp.MustCompile(`#\w+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// FinetuningEntry is one line of the finetuning JSONL artifact.
type FinetuningEntry struct {
	Text string `json:"text"`
}

// FinetuningEntries selects and cleans posts for the finetuning dataset.
// Only original (non-retweet) posts with a known publish time qualify; URLs
// and hashtags are stripped and whitespace collapsed. Posts whose text is
// empty after cleaning are dropped.
func FinetuningEntries(posts []types.Post) []FinetuningEntry {
	var entries []FinetuningEntry
	for _, p := range posts {
		if p.IsRetweet || !p.HasTimestamp() {
			continue
		}
		text := CleanText(p.Text)
		if text == "" {
			continue
		}
		entries = append(entries, FinetuningEntry{Text: text})
	}
	return entries
}

// CleanText strips URLs and hashtags and collapses runs of whitespace.
func CleanText(s string) string {
	s = urlPattern.ReplaceAllString(s, "")
	s = hashtagPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
