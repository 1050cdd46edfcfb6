package tracker

import (
	"context"
	"fmt"
	"log"

	"github.com/alx/twitter-scraper-finetune/internal/types"
)

const (
	titleMaxLen    = 50
	titlePrefixLen = 47
)

// Report accounts for every post handed to Submit. The four counts always
// sum to the input length.
type Report struct {
	Created            int `json:"created"`
	Failed             int `json:"failed"`
	SkippedMissingData int `json:"skipped_missing_data"`
	SkippedExisting    int `json:"skipped_existing"`
}

// Sink submits posts as link records. FailClosed controls the handling of an
// existence check that errors out: fail-open (default) treats the link as new
// and re-submits it, accepting a possible remote duplicate; fail-closed
// counts it as failed without submitting.
type Sink struct {
	client     *Client
	listID     int
	failClosed bool
}

// NewSink wraps a tracker client as a pipeline sink. listID 0 means no list
// membership is assigned.
func NewSink(client *Client, listID int, failClosed bool) *Sink {
	return &Sink{client: client, listID: listID, failClosed: failClosed}
}

// Submit mirrors the posts into the remote service. Posts missing a URL,
// text, or username are skipped outright; surviving posts are checked for
// remote existence one by one, and the remainder goes up as a single bulk
// create. The bulk endpoint is all-or-nothing, so a rejected batch marks
// every submitted post failed.
func (s *Sink) Submit(ctx context.Context, posts []types.Post, handle string) Report {
	var report Report
	var survivors []types.Post

	for _, p := range posts {
		if p.PermanentURL == "" || p.Text == "" || p.Username == "" {
			report.SkippedMissingData++
			continue
		}

		exists, err := s.client.LinkExists(ctx, p.PermanentURL)
		if err != nil {
			if s.failClosed {
				log.Printf("Existence check failed for %s, not submitting: %v", p.PermanentURL, err)
				report.Failed++
				continue
			}
			log.Printf("Existence check failed for %s, submitting anyway: %v", p.PermanentURL, err)
			exists = false
		}
		if exists {
			report.SkippedExisting++
			continue
		}

		survivors = append(survivors, p)
	}

	if len(survivors) == 0 {
		return report
	}

	links := make([]Link, 0, len(survivors))
	for _, p := range survivors {
		links = append(links, s.buildLink(p, handle))
	}

	if err := s.client.CreateLinks(ctx, links); err != nil {
		log.Printf("Bulk create of %d links failed: %v", len(links), err)
		report.Failed += len(survivors)
		return report
	}

	report.Created = len(survivors)
	return report
}

func (s *Sink) buildLink(p types.Post, handle string) Link {
	title := p.Text
	if runes := []rune(p.Text); len(runes) > titleMaxLen {
		title = fmt.Sprintf("%s: %s...", p.Username, string(runes[:titlePrefixLen]))
	}

	link := Link{
		URL:         p.PermanentURL,
		Title:       title,
		Description: p.Text,
		Tags: []string{
			"source:twitter",
			"username:" + handle,
			"inject:scraper",
		},
		Visibility: "internal",
	}
	if s.listID != 0 {
		link.Lists = []int{s.listID}
	}
	return link
}
