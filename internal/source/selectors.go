package source

// twitter.com DOM selectors
// These are isolated here because X changes their DOM frequently
// Update these when scraping breaks

const (
	// Timeline selectors
	TimelineContainer = `[data-testid="primaryColumn"]`
	TweetArticle      = `article[data-testid="tweet"]`

	// Profile header selectors
	ProfileName        = `[data-testid="UserName"]`
	ProfileFollowers   = `a[href$="/verified_followers"]`
	EmptyStateHeadline = `[data-testid="emptyState"]`

	// Tweet content selectors
	TweetText      = `[data-testid="tweetText"]`
	TweetTimestamp = `time`
	TweetLink      = `a[href*="/status/"]`

	// Tweet type indicators
	RetweetIndicator = `[data-testid="socialContext"]`

	// Auth state indicators
	HomeIndicator = `[data-testid="SideNav_NewTweet_Button"]`
	LoginForm     = `[data-testid="loginButton"]`
)

// Common wait conditions
const (
	WaitForTimeline = TimelineContainer
	WaitForTweets   = TweetArticle
)
