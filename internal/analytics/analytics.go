// Package analytics derives aggregate statistics from a collection of posts.
// Analyze is pure and deterministic; the result is always regenerable from
// the same input and is never treated as a source of truth.
package analytics

import (
	"sort"
	"time"

	"github.com/alx/twitter-scraper-finetune/internal/types"
)

const (
	topTweetCount    = 5
	topTweetTextMax  = 100
	noDatesAvailable = "N/A"
)

// Analytics is the derived value object for one collection run.
type Analytics struct {
	TotalTweets       int          `json:"total_tweets"`
	DirectTweets      int          `json:"direct_tweets"`
	Replies           int          `json:"replies"`
	Retweets          int          `json:"retweets"`
	TotalLikes        int          `json:"total_likes"`
	TotalRetweetCount int          `json:"total_retweet_count"`
	TotalReplies      int          `json:"total_replies"`
	AverageLikes      float64      `json:"average_likes"`
	TopTweets         []TopTweet   `json:"top_tweets"`
	DateRange         DateRange    `json:"date_range"`
	ContentTypes      ContentTypes `json:"content_types"`
}

// TopTweet is the summary projection used for the top-engagement list.
type TopTweet struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Likes    int    `json:"likes"`
	Retweets int    `json:"retweets"`
	URL      string `json:"url"`
}

// DateRange holds the oldest and newest known publish times, or "N/A" when no
// post in the collection carries a timestamp.
type DateRange struct {
	Oldest string `json:"oldest"`
	Newest string `json:"newest"`
}

// ContentTypes breaks the collection down by attached media. TextOnly is the
// only mutually exclusive bucket; the other three may overlap.
type ContentTypes struct {
	WithPhotos int `json:"with_photos"`
	WithVideos int `json:"with_videos"`
	WithLinks  int `json:"with_links"`
	TextOnly   int `json:"text_only"`
}

// Analyze computes aggregate statistics over the posts. An empty input yields
// the zero-value shape rather than an error. Engagement totals and the top
// list exclude retweets, since retweeting is not original engagement.
func Analyze(posts []types.Post) Analytics {
	a := Analytics{
		TotalTweets: len(posts),
		TopTweets:   []TopTweet{},
		DateRange:   DateRange{Oldest: noDatesAvailable, Newest: noDatesAvailable},
	}

	var originals []types.Post
	var oldest, newest time.Time

	for _, p := range posts {
		if p.IsReply {
			a.Replies++
		}
		if p.IsRetweet {
			a.Retweets++
		}
		if !p.IsReply && !p.IsRetweet {
			a.DirectTweets++
		}

		if !p.IsRetweet {
			a.TotalLikes += p.Likes
			a.TotalRetweetCount += p.Retweets
			a.TotalReplies += p.Replies
			originals = append(originals, p)
		}

		if p.HasTimestamp() {
			if oldest.IsZero() || p.Timestamp.Before(oldest) {
				oldest = p.Timestamp
			}
			if newest.IsZero() || p.Timestamp.After(newest) {
				newest = p.Timestamp
			}
		}

		if p.HasPhotos {
			a.ContentTypes.WithPhotos++
		}
		if p.HasVideos {
			a.ContentTypes.WithVideos++
		}
		if p.HasLinks {
			a.ContentTypes.WithLinks++
		}
		if !p.HasPhotos && !p.HasVideos && !p.HasLinks {
			a.ContentTypes.TextOnly++
		}
	}

	if len(originals) > 0 {
		a.AverageLikes = float64(a.TotalLikes) / float64(len(originals))
	}

	if !oldest.IsZero() {
		a.DateRange.Oldest = oldest.UTC().Format(time.RFC3339)
		a.DateRange.Newest = newest.UTC().Format(time.RFC3339)
	}

	a.TopTweets = topTweets(originals)

	return a
}

// topTweets ranks non-retweet posts by like count, descending. The stable
// sort keeps collection order for ties.
func topTweets(originals []types.Post) []TopTweet {
	ranked := make([]types.Post, len(originals))
	copy(ranked, originals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Likes > ranked[j].Likes
	})

	if len(ranked) > topTweetCount {
		ranked = ranked[:topTweetCount]
	}

	top := make([]TopTweet, 0, len(ranked))
	for _, p := range ranked {
		top = append(top, TopTweet{
			ID:       p.ID,
			Text:     truncate(p.Text, topTweetTextMax),
			Likes:    p.Likes,
			Retweets: p.Retweets,
			URL:      p.PermanentURL,
		})
	}
	return top
}

// truncate caps s at maxLen runes, keeping the ellipsis within the
// budget. Slicing on runes rather than bytes keeps multibyte text intact.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
