package scheduler

import (
	"context"
	"testing"
)

func TestAddScrapeJobAcceptsHourlyIntervals(t *testing.T) {
	s := New()

	for _, hours := range []int{1, 6, 24} {
		if err := s.AddScrapeJob(hours, func(ctx context.Context) error { return nil }); err != nil {
			t.Errorf("interval %dh: unexpected error: %v", hours, err)
		}
	}
}

func TestAddJobRejectsMalformedSchedule(t *testing.T) {
	s := New()

	err := s.AddJob("broken", "not a cron expression", func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected an error for a malformed schedule")
	}
}
