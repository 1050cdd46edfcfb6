package source

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/alx/twitter-scraper-finetune/internal/auth"
	"github.com/alx/twitter-scraper-finetune/internal/browser"
	"github.com/alx/twitter-scraper-finetune/internal/types"
)

// Scraper extracts posts from a public twitter.com profile timeline by
// driving a browser. It implements Source. Scrolling has no stable
// pagination cursor, so ResumeCursor always reports "".
type Scraper struct {
	cookies  *auth.CookieStore
	headless bool
}

// NewScraper creates a timeline scraper backed by the given cookie store.
func NewScraper(cookies *auth.CookieStore, headless bool) *Scraper {
	return &Scraper{cookies: cookies, headless: headless}
}

// Verify checks that usable session cookies are stored.
func (s *Scraper) Verify(ctx context.Context) error {
	if _, err := s.cookies.Load(); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	return nil
}

// Profile scrapes the account's profile header.
func (s *Scraper) Profile(ctx context.Context, handle string) (types.Profile, error) {
	browserCtx, cancel, err := s.newBrowser(ctx, 2*time.Minute)
	if err != nil {
		return types.Profile{}, err
	}
	defer cancel()

	var name string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("https://twitter.com/"+handle),
		chromedp.WaitVisible(ProfileName, chromedp.ByQuery),
		chromedp.Text(ProfileName, &name, chromedp.ByQuery),
	)
	if err != nil {
		return types.Profile{}, fmt.Errorf("failed to load profile for %s: %w", handle, err)
	}

	// The UserName block renders as "Display Name\n@handle"
	if i := strings.IndexByte(name, '\n'); i >= 0 {
		name = name[:i]
	}

	return types.Profile{Username: handle, Name: name}, nil
}

// Posts streams the profile timeline lazily: each scroll's newly visible
// tweets are yielded before the next scroll happens, so a consumer that
// stops early never pays for the rest of the timeline. Errors after the
// first batch surface through the iterator and end the stream.
func (s *Scraper) Posts(ctx context.Context, handle string, max int, cursor string) iter.Seq2[types.Post, error] {
	return func(yield func(types.Post, error) bool) {
		browserCtx, cancel, err := s.newBrowser(ctx, 10*time.Minute)
		if err != nil {
			yield(types.Post{}, err)
			return
		}
		defer cancel()

		if err := chromedp.Run(browserCtx,
			chromedp.Navigate("https://twitter.com/"+handle),
			chromedp.WaitVisible(WaitForTimeline, chromedp.ByQuery),
		); err != nil {
			yield(types.Post{}, fmt.Errorf("failed to load timeline for %s: %w", handle, err))
			return
		}

		seen := make(map[string]bool)
		yielded := 0
		stalls := 0

		for !reachedLimit(yielded, max) && stalls < 3 {
			batch, err := s.extractVisiblePosts(browserCtx, handle)
			if err != nil {
				yield(types.Post{}, err)
				return
			}

			progressed := false
			for _, p := range batch {
				if seen[p.ID] {
					continue
				}
				seen[p.ID] = true
				progressed = true
				if !yield(p, nil) {
					return
				}
				yielded++
				if reachedLimit(yielded, max) {
					return
				}
			}
			if progressed {
				stalls = 0
			} else {
				stalls++
			}

			if err := chromedp.Run(browserCtx,
				chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
			); err != nil {
				yield(types.Post{}, fmt.Errorf("failed to scroll timeline: %w", err))
				return
			}
			time.Sleep(750 * time.Millisecond)
		}
	}
}

// reachedLimit reports whether the stream has hit its per-run ceiling.
// A ceiling of zero or less means no ceiling at all, matching how the
// collector interprets its own max.
func reachedLimit(yielded, max int) bool {
	return max > 0 && yielded >= max
}

// ResumeCursor implements Source. Scroll position is not resumable.
func (s *Scraper) ResumeCursor() string {
	return ""
}

// newBrowser opens a browser context with stealth options, injected session
// cookies, and an overall timeout. The returned cancel tears everything down.
func (s *Scraper) newBrowser(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	stored, err := s.cookies.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, browser.Options(s.headless)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, timeout)

	cancel := func() {
		timeoutCancel()
		browserCancel()
		allocCancel()
	}

	if err := s.injectCookies(browserCtx, stored.Cookies); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to inject cookies: %w", err)
	}

	return browserCtx, cancel, nil
}

// injectCookies sets cookies in the browser context
func (s *Scraper) injectCookies(ctx context.Context, cookies []*network.Cookie) error {
	return chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range cookies {
				err := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithSecure(c.Secure).
					WithHTTPOnly(c.HTTPOnly).
					WithSameSite(c.SameSite).
					Do(ctx)

				if err != nil {
					return err
				}
			}
			return nil
		}),
	)
}

// rawPost represents the raw data extracted from the DOM via JavaScript
type rawPost struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Likes     string `json:"likes"`
	Retweets  string `json:"retweets"`
	Replies   string `json:"replies"`
	IsRetweet bool   `json:"isRetweet"`
	IsReply   bool   `json:"isReply"`
	URL       string `json:"url"`
	HasPhotos bool   `json:"hasPhotos"`
	HasVideos bool   `json:"hasVideos"`
	HasLinks  bool   `json:"hasLinks"`
}

// extractVisiblePosts parses currently visible tweets
func (s *Scraper) extractVisiblePosts(ctx context.Context, handle string) ([]types.Post, error) {
	var rawPosts []rawPost

	// JavaScript to extract tweet data from the DOM
	extractJS := `
		(function() {
			const tweets = document.querySelectorAll('article[data-testid="tweet"]');
			const results = [];

			tweets.forEach(el => {
				try {
					const statusLink = el.querySelector('a[href*="/status/"]');
					const id = statusLink?.href?.match(/status\/(\d+)/)?.[1];
					if (!id) return;

					let username = '';
					const userNameEl = el.querySelector('[data-testid="User-Name"]');
					if (userNameEl) {
						const handleLink = userNameEl.querySelector('a[href^="/"]');
						if (handleLink) {
							username = handleLink.getAttribute('href')?.replace('/', '') || '';
						}
					}

					const tweetTextEl = el.querySelector('[data-testid="tweetText"]');
					const text = tweetTextEl?.textContent || '';

					const timeEl = el.querySelector('time');
					const timestamp = timeEl?.getAttribute('datetime') || '';

					const getMetric = (testId) => {
						const metricEl = el.querySelector('[data-testid="' + testId + '"]');
						if (!metricEl) return '0';
						const ariaLabel = metricEl.getAttribute('aria-label');
						if (ariaLabel) {
							const match = ariaLabel.match(/^([\d,.]+[KkMm]?)/);
							return match ? match[1] : '0';
						}
						const text = metricEl.textContent?.trim();
						return text || '0';
					};

					const socialContext = el.querySelector('[data-testid="socialContext"]');
					const isRetweet = socialContext?.textContent?.toLowerCase().includes('repost') ||
					                  socialContext?.textContent?.toLowerCase().includes('retweeted') || false;

					const isReply = el.textContent?.includes('Replying to') || false;

					const hasPhotos = el.querySelector('[data-testid="tweetPhoto"] img') !== null;
					const hasVideos = el.querySelector('[data-testid="videoPlayer"] video') !== null;
					const hasLinks = el.querySelector('[data-testid="tweetText"] a[href^="http"], [data-testid="card.wrapper"]') !== null;

					results.push({
						id,
						username,
						text,
						timestamp,
						likes: getMetric('like'),
						retweets: getMetric('retweet'),
						replies: getMetric('reply'),
						isRetweet,
						isReply,
						url: statusLink?.href || '',
						hasPhotos,
						hasVideos,
						hasLinks
					});
				} catch (e) {
					console.error('Error extracting tweet:', e);
				}
			});

			return results;
		})()
	`

	err := chromedp.Run(ctx,
		chromedp.Evaluate(extractJS, &rawPosts),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract posts from DOM: %w", err)
	}

	posts := make([]types.Post, 0, len(rawPosts))
	for _, rp := range rawPosts {
		if rp.ID == "" {
			continue
		}

		var timestamp time.Time
		if rp.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, rp.Timestamp); err == nil {
				timestamp = parsed
			}
		}

		username := rp.Username
		if username == "" {
			username = handle
		}

		posts = append(posts, types.Post{
			ID:           rp.ID,
			Username:     username,
			Text:         rp.Text,
			Timestamp:    timestamp,
			IsReply:      rp.IsReply,
			IsRetweet:    rp.IsRetweet,
			Likes:        parseMetric(rp.Likes),
			Retweets:     parseMetric(rp.Retweets),
			Replies:      parseMetric(rp.Replies),
			PermanentURL: rp.URL,
			HasPhotos:    rp.HasPhotos,
			HasVideos:    rp.HasVideos,
			HasLinks:     rp.HasLinks,
		})
	}

	return posts, nil
}

// parseMetric converts display strings like "1,234" or "5.6K" to integers
func parseMetric(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(v * multiplier)
}
