// Package collector turns a lazy, possibly interrupted stream of posts into a
// finite, deduplicated collection.
package collector

import (
	"iter"
	"log"

	"github.com/alx/twitter-scraper-finetune/internal/types"
)

// Collect consumes the stream once and returns the unique posts in first-seen
// order. A duplicate ID overwrites the earlier value in place, so the slice
// position of the first occurrence is kept. max caps the number of unique
// posts collected; max <= 0 means unbounded.
//
// A mid-stream error does not propagate: long paginated fetches routinely die
// partway through, and the posts accumulated before the failure are still
// worth persisting. The error is logged and whatever was collected so far is
// returned.
func Collect(stream iter.Seq2[types.Post, error], max int) []types.Post {
	index := make(map[string]int)
	var posts []types.Post

	for post, err := range stream {
		if err != nil {
			log.Printf("Collection interrupted after %d posts: %v", len(posts), err)
			break
		}
		if i, seen := index[post.ID]; seen {
			posts[i] = post
			continue
		}
		index[post.ID] = len(posts)
		posts = append(posts, post)
		if max > 0 && len(posts) >= max {
			break
		}
	}

	return posts
}
