package analytics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alx/twitter-scraper-finetune/internal/types"
)

func TestAnalyze_EmptyInputYieldsZeroValueShape(t *testing.T) {
	a := Analyze(nil)

	if a.TotalTweets != 0 || a.TotalLikes != 0 || a.AverageLikes != 0 {
		t.Errorf("expected zero counts, got %+v", a)
	}
	if a.DateRange.Oldest != "N/A" || a.DateRange.Newest != "N/A" {
		t.Errorf("expected N/A date range, got %+v", a.DateRange)
	}
	if a.TopTweets == nil || len(a.TopTweets) != 0 {
		t.Errorf("expected empty (non-nil) top list, got %v", a.TopTweets)
	}
}

func TestAnalyze_EngagementExcludesRetweets(t *testing.T) {
	posts := []types.Post{
		{ID: "1", Likes: 10},
		{ID: "2", Likes: 50},
		{ID: "3", Likes: 999, IsRetweet: true},
	}

	a := Analyze(posts)

	if a.TotalLikes != 60 {
		t.Errorf("expected total likes 60, got %d", a.TotalLikes)
	}
	if a.Retweets != 1 {
		t.Errorf("expected 1 retweet, got %d", a.Retweets)
	}
	if a.DirectTweets != 2 {
		t.Errorf("expected 2 direct tweets, got %d", a.DirectTweets)
	}
	for _, top := range a.TopTweets {
		if top.ID == "3" {
			t.Error("top list must exclude retweets")
		}
	}
}

func TestAnalyze_AverageLikesZeroWhenOnlyRetweets(t *testing.T) {
	posts := []types.Post{
		{ID: "1", Likes: 100, IsRetweet: true},
		{ID: "2", Likes: 200, IsRetweet: true},
	}

	a := Analyze(posts)

	if a.AverageLikes != 0 {
		t.Errorf("expected average 0 with no originals, got %f", a.AverageLikes)
	}
}

func TestAnalyze_ReplyAndRetweetAreMutuallyTaggable(t *testing.T) {
	posts := []types.Post{
		{ID: "1", IsReply: true, IsRetweet: true},
	}

	a := Analyze(posts)

	if a.Replies != 1 || a.Retweets != 1 {
		t.Errorf("expected post counted as both reply and retweet, got %+v", a)
	}
	if a.DirectTweets != 0 {
		t.Errorf("expected 0 direct tweets, got %d", a.DirectTweets)
	}
}

func TestAnalyze_TopFiveByLikesWithStableTies(t *testing.T) {
	posts := []types.Post{
		{ID: "a", Likes: 5},
		{ID: "b", Likes: 9},
		{ID: "c", Likes: 5},
		{ID: "d", Likes: 1},
		{ID: "e", Likes: 7},
		{ID: "f", Likes: 3},
	}

	a := Analyze(posts)

	if len(a.TopTweets) != 5 {
		t.Fatalf("expected 5 top tweets, got %d", len(a.TopTweets))
	}
	wantOrder := []string{"b", "e", "a", "c", "f"}
	for i, want := range wantOrder {
		if a.TopTweets[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, a.TopTweets[i].ID)
		}
	}
}

func TestAnalyze_TopTweetTextTruncatedTo100(t *testing.T) {
	posts := []types.Post{
		{ID: "1", Text: strings.Repeat("x", 250), Likes: 1},
	}

	a := Analyze(posts)

	if got := len(a.TopTweets[0].Text); got != 100 {
		t.Errorf("expected truncated text of 100 chars, got %d", got)
	}
	if !strings.HasSuffix(a.TopTweets[0].Text, "...") {
		t.Error("expected truncated text to end with ellipsis")
	}
}

func TestAnalyze_TruncationKeepsMultibyteTextValid(t *testing.T) {
	posts := []types.Post{
		{ID: "1", Text: strings.Repeat("é", 150), Likes: 1},
	}

	a := Analyze(posts)

	got := a.TopTweets[0].Text
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("expected 100 runes after truncation, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected truncated text to end with ellipsis")
	}
}

func TestAnalyze_NullTimestampsExcludedFromDateRangeOnly(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []types.Post{
		{ID: "1", Timestamp: ts, Likes: 3},
		{ID: "2", Likes: 4}, // unknown publish time, still counted elsewhere
	}

	a := Analyze(posts)

	if a.TotalTweets != 2 || a.TotalLikes != 7 {
		t.Errorf("post without timestamp must still count in totals, got %+v", a)
	}
	if a.DateRange.Oldest != "2024-03-01T12:00:00Z" || a.DateRange.Newest != "2024-03-01T12:00:00Z" {
		t.Errorf("expected range from the single timestamped post, got %+v", a.DateRange)
	}
}

func TestAnalyze_NoTimestampsYieldsNARange(t *testing.T) {
	a := Analyze([]types.Post{{ID: "1"}, {ID: "2"}})

	if a.DateRange.Oldest != "N/A" || a.DateRange.Newest != "N/A" {
		t.Errorf("expected N/A range, got %+v", a.DateRange)
	}
}

func TestAnalyze_ContentTypeBuckets(t *testing.T) {
	posts := []types.Post{
		{ID: "1", HasPhotos: true, HasLinks: true},
		{ID: "2", HasVideos: true},
		{ID: "3"},
	}

	a := Analyze(posts)

	if a.ContentTypes.WithPhotos != 1 || a.ContentTypes.WithVideos != 1 ||
		a.ContentTypes.WithLinks != 1 || a.ContentTypes.TextOnly != 1 {
		t.Errorf("unexpected content type breakdown: %+v", a.ContentTypes)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	posts := []types.Post{
		{ID: "1", Likes: 10, Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Likes: 10, IsReply: true},
		{ID: "3", IsRetweet: true, Retweets: 40},
	}

	first, err := json.Marshal(Analyze(posts))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(Analyze(posts))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if string(first) != string(second) {
		t.Error("expected byte-identical output for identical input")
	}
}
