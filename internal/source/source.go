// Package source defines the feed source consumed by the pipeline and
// provides the live twitter.com implementation.
package source

import (
	"context"
	"errors"
	"iter"

	"github.com/alx/twitter-scraper-finetune/internal/types"
)

// ErrSessionInvalid indicates the upstream session is unusable. The pipeline
// treats it as terminal for the current account only.
var ErrSessionInvalid = errors.New("upstream session is invalid")

// Source supplies a profile summary and a lazy stream of posts for an
// account. Implementations may yield fewer posts than max, and a yielded
// error ends the stream.
type Source interface {
	// Verify confirms the session/capability is usable before any account
	// work starts. Returns ErrSessionInvalid when it is not.
	Verify(ctx context.Context) error

	// Profile fetches the account summary.
	Profile(ctx context.Context, handle string) (types.Profile, error)

	// Posts returns a lazy stream of posts for the account, bounded by max
	// as a ceiling. cursor resumes a prior paginated fetch when the
	// implementation supports it ("" starts from the top).
	Posts(ctx context.Context, handle string, max int, cursor string) iter.Seq2[types.Post, error]

	// ResumeCursor reports the pagination cursor reached by the most recent
	// Posts iteration, or "" when the implementation has no cursors.
	ResumeCursor() string
}
