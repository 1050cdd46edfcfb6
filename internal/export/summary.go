package export

import (
	"bytes"
	"fmt"

	"github.com/alx/twitter-scraper-finetune/internal/analytics"
	"github.com/alx/twitter-scraper-finetune/internal/types"
)

// renderSummary produces the human-readable markdown digest of one run's
// analytics, headed by the scraped profile summary.
func renderSummary(profile types.Profile, stats analytics.Analytics) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# @%s scrape summary\n\n", profile.Username)
	if profile.Name != "" {
		fmt.Fprintf(&buf, "Account: %s (@%s)\n", profile.Name, profile.Username)
	}
	if profile.FollowersCount > 0 {
		fmt.Fprintf(&buf, "Followers: %d\n", profile.FollowersCount)
	}
	if profile.Name != "" || profile.FollowersCount > 0 {
		fmt.Fprintf(&buf, "\n")
	}

	fmt.Fprintf(&buf, "- Total tweets: %d\n", stats.TotalTweets)
	fmt.Fprintf(&buf, "- Direct tweets: %d\n", stats.DirectTweets)
	fmt.Fprintf(&buf, "- Replies: %d\n", stats.Replies)
	fmt.Fprintf(&buf, "- Retweets: %d\n", stats.Retweets)
	fmt.Fprintf(&buf, "- Total likes: %d\n", stats.TotalLikes)
	fmt.Fprintf(&buf, "- Average likes: %.2f\n", stats.AverageLikes)
	fmt.Fprintf(&buf, "- Date range: %s to %s\n\n", stats.DateRange.Oldest, stats.DateRange.Newest)

	fmt.Fprintf(&buf, "## Content types\n\n")
	fmt.Fprintf(&buf, "- With photos: %d\n", stats.ContentTypes.WithPhotos)
	fmt.Fprintf(&buf, "- With videos: %d\n", stats.ContentTypes.WithVideos)
	fmt.Fprintf(&buf, "- With links: %d\n", stats.ContentTypes.WithLinks)
	fmt.Fprintf(&buf, "- Text only: %d\n\n", stats.ContentTypes.TextOnly)

	if len(stats.TopTweets) > 0 {
		fmt.Fprintf(&buf, "## Top tweets\n\n")
		for i, t := range stats.TopTweets {
			fmt.Fprintf(&buf, "%d. %s (%d likes, %d retweets)\n   %s\n", i+1, t.Text, t.Likes, t.Retweets, t.URL)
		}
	}

	return buf.String()
}
