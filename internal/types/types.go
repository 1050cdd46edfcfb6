package types

import "time"

// Post represents one scraped tweet. Instances are immutable snapshots once
// fetched; a zero Timestamp means the publish time is unknown.
type Post struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
	IsReply      bool      `json:"is_reply"`
	IsRetweet    bool      `json:"is_retweet"`
	Likes        int       `json:"likes"`
	Retweets     int       `json:"retweets"`
	Replies      int       `json:"replies"`
	PermanentURL string    `json:"permanent_url"`
	HasPhotos    bool      `json:"has_photos"`
	HasVideos    bool      `json:"has_videos"`
	HasLinks     bool      `json:"has_links"`
}

// HasTimestamp reports whether the post carries a known publish time.
func (p Post) HasTimestamp() bool {
	return !p.Timestamp.IsZero()
}

// Profile summarizes the scraped account.
type Profile struct {
	Username       string `json:"username"`
	Name           string `json:"name"`
	FollowersCount int    `json:"followers_count"`
	TweetsCount    int    `json:"tweets_count"`
}
