// Package pipeline orchestrates one account's collection run and fans the
// result out to the file, database, and link-tracking sinks.
package pipeline

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/alx/twitter-scraper-finetune/internal/analytics"
	"github.com/alx/twitter-scraper-finetune/internal/collector"
	"github.com/alx/twitter-scraper-finetune/internal/source"
	"github.com/alx/twitter-scraper-finetune/internal/tracker"
	"github.com/alx/twitter-scraper-finetune/internal/types"
)

// State tracks the progress of one account run.
type State int

const (
	StateIdle State = iota
	StateVerifying
	StateCollecting
	StateAnalyzing
	StatePersisting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVerifying:
		return "verifying"
	case StateCollecting:
		return "collecting"
	case StateAnalyzing:
		return "analyzing"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileSink is the file-export sink surface used by the pipeline.
type FileSink interface {
	Persist(profile types.Profile, posts []types.Post, stats analytics.Analytics) error
	LastResumeToken(handle string) string
	SaveResumeToken(handle, token string) error
}

// DatabaseSink is the relational sink surface used by the pipeline.
type DatabaseSink interface {
	UpsertBatch(ctx context.Context, posts []types.Post) error
}

// LinkSink is the link-tracking sink surface used by the pipeline.
type LinkSink interface {
	Submit(ctx context.Context, posts []types.Post, handle string) tracker.Report
}

// Result summarizes one account run. SinkErrors holds the caught error per
// sink name; a run still reaches StateDone with every sink failed.
type Result struct {
	RunID      string
	Handle     string
	State      State
	PostCount  int
	Err        error
	SinkErrors map[string]error
	Tracker    tracker.Report
}

// Pipeline runs collect -> analyze -> persist for accounts, one at a time.
// The sinks are long-lived instances owned by the caller; the pipeline never
// closes them.
type Pipeline struct {
	src       source.Source
	files     FileSink
	db        DatabaseSink
	links     LinkSink
	maxTweets int
}

// New creates a Pipeline around the given source and sinks. db and links may
// be nil, which disables those sinks (the file sink is always required).
func New(src source.Source, files FileSink, db DatabaseSink, links LinkSink, maxTweets int) *Pipeline {
	return &Pipeline{
		src:       src,
		files:     files,
		db:        db,
		links:     links,
		maxTweets: maxTweets,
	}
}

// Run executes the full pipeline for one account. Collection never fails the
// run (partial results are kept), and persistence failures are caught per
// sink so the remaining sinks still execute. Only a verification failure is
// terminal.
func (p *Pipeline) Run(ctx context.Context, handle string) Result {
	res := Result{
		RunID:      uuid.NewString(),
		Handle:     handle,
		State:      StateIdle,
		SinkErrors: make(map[string]error),
	}

	res.State = StateVerifying
	log.Printf("[%s] Verifying session for @%s", res.RunID, handle)
	if err := p.src.Verify(ctx); err != nil {
		log.Printf("[%s] Session verification failed for @%s: %v", res.RunID, handle, err)
		res.State = StateFailed
		res.Err = err
		return res
	}

	// The profile summary only enriches the file export; a failed fetch
	// falls back to the bare handle rather than failing the run.
	profile, err := p.src.Profile(ctx, handle)
	if err != nil {
		log.Printf("[%s] Could not fetch profile for @%s: %v", res.RunID, handle, err)
		profile = types.Profile{Username: handle}
	}

	res.State = StateCollecting
	cursor := p.files.LastResumeToken(handle)
	if cursor != "" {
		log.Printf("[%s] Resuming @%s from saved cursor", res.RunID, handle)
	}
	log.Printf("[%s] Collecting up to %d posts from @%s", res.RunID, p.maxTweets, handle)
	posts := collector.Collect(p.src.Posts(ctx, handle, p.maxTweets, cursor), p.maxTweets)
	res.PostCount = len(posts)
	log.Printf("[%s] Collected %d unique posts from @%s", res.RunID, len(posts), handle)

	res.State = StateAnalyzing
	stats := analytics.Analyze(posts)

	res.State = StatePersisting
	p.persist(ctx, profile, posts, stats, &res)

	res.State = StateDone
	log.Printf("[%s] Run for @%s done: %d posts, %d sink errors, tracker %+v",
		res.RunID, handle, res.PostCount, len(res.SinkErrors), res.Tracker)
	return res
}

// persist writes to the three sinks sequentially and independently. There is
// no rollback across sinks; each failure is recorded and the next sink runs.
func (p *Pipeline) persist(ctx context.Context, profile types.Profile, posts []types.Post, stats analytics.Analytics, res *Result) {
	handle := profile.Username
	if err := p.files.Persist(profile, posts, stats); err != nil {
		log.Printf("[%s] File export failed for @%s: %v", res.RunID, handle, err)
		res.SinkErrors["files"] = err
	} else if token := p.src.ResumeCursor(); token != "" {
		if err := p.files.SaveResumeToken(handle, token); err != nil {
			log.Printf("[%s] Could not save resume token for @%s: %v", res.RunID, handle, err)
		}
	}

	if p.db != nil {
		if err := p.db.UpsertBatch(ctx, posts); err != nil {
			log.Printf("[%s] Database upsert failed for @%s: %v", res.RunID, handle, err)
			res.SinkErrors["database"] = err
		}
	}

	if p.links != nil {
		res.Tracker = p.links.Submit(ctx, posts, handle)
		log.Printf("[%s] Link tracking for @%s: created=%d failed=%d skipped_missing=%d skipped_existing=%d",
			res.RunID, handle, res.Tracker.Created, res.Tracker.Failed,
			res.Tracker.SkippedMissingData, res.Tracker.SkippedExisting)
	}
}

// RunAll processes the accounts strictly sequentially in input order. One
// account's failure never affects the next; every account gets a result.
func (p *Pipeline) RunAll(ctx context.Context, handles []string) []Result {
	results := make([]Result, 0, len(handles))
	for _, handle := range handles {
		results = append(results, p.Run(ctx, handle))
	}
	return results
}
