// Command tsf scrapes public Twitter accounts, derives analytics, and
// persists the results to file exports, a SQLite database, and a remote
// link-tracking service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/alx/twitter-scraper-finetune/internal/auth"
	"github.com/alx/twitter-scraper-finetune/internal/config"
	"github.com/alx/twitter-scraper-finetune/internal/export"
	"github.com/alx/twitter-scraper-finetune/internal/pipeline"
	"github.com/alx/twitter-scraper-finetune/internal/scheduler"
	"github.com/alx/twitter-scraper-finetune/internal/source"
	"github.com/alx/twitter-scraper-finetune/internal/store"
	"github.com/alx/twitter-scraper-finetune/internal/tracker"
)

var configPath string

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	root := &cobra.Command{
		Use:   "tsf",
		Short: "Twitter scraping and multi-sink persistence pipeline",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config file")

	root.AddCommand(runCmd(), scheduleCmd(), openCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [handles...]",
		Short: "Run the pipeline once for the given accounts (default: configured accounts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, cleanup, err := buildPipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			handles := args
			if len(handles) == 0 {
				handles = cfg.Accounts.Handles
			}
			if len(handles) == 0 {
				return fmt.Errorf("no accounts given and none configured")
			}

			results := p.RunAll(cmd.Context(), handles)
			printSummary(results)
			return nil
		},
	}
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on the configured interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, cleanup, err := buildPipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			sched := scheduler.New()
			err = sched.AddScrapeJob(cfg.Scraping.IntervalHours, func(ctx context.Context) error {
				printSummary(p.RunAll(ctx, cfg.Accounts.Handles))
				return nil
			})
			if err != nil {
				return err
			}

			sched.Start()
			defer func() {
				<-sched.Stop().Done()
			}()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			log.Println("Shutting down")
			return nil
		},
	}
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <config|output>",
		Short: "Open the config file or output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "config":
				return browser.OpenFile(configPath)
			case "output":
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				abs, err := filepath.Abs(cfg.Output.Dir)
				if err != nil {
					return err
				}
				return browser.OpenFile(abs)
			default:
				return fmt.Errorf("unknown target %q (want config or output)", args[0])
			}
		},
	}
}

// buildPipeline loads config, validates it, and wires the long-lived source
// and sinks. The returned cleanup closes everything after the whole batch.
func buildPipeline() (*config.Config, *pipeline.Pipeline, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cookieStore := auth.NewCookieStore(filepath.Join(cfg.Output.Dir, "cookies.json"))
	src := source.NewScraper(cookieStore, cfg.Scraping.Headless)

	exporter := export.New(cfg.Output.Dir)

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	client := tracker.NewClient(cfg.Tracker.Host, cfg.Tracker.APIKey,
		tracker.WithTimeout(time.Duration(cfg.Tracker.TimeoutSecs)*time.Second))
	links := tracker.NewSink(client, cfg.Tracker.ListID, cfg.Tracker.FailClosed)

	p := pipeline.New(src, exporter, db, links, cfg.Scraping.MaxTweets)

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Printf("Warning: failed to close database: %v", err)
		}
	}
	return cfg, p, cleanup, nil
}

func printSummary(results []pipeline.Result) {
	for _, r := range results {
		fmt.Printf("@%s: %s, %d posts", r.Handle, r.State, r.PostCount)
		if r.Err != nil {
			fmt.Printf(", error: %v", r.Err)
		}
		fmt.Printf(", tracker created=%d failed=%d skipped_missing=%d skipped_existing=%d",
			r.Tracker.Created, r.Tracker.Failed, r.Tracker.SkippedMissingData, r.Tracker.SkippedExisting)
		for sink, err := range r.SinkErrors {
			fmt.Printf(", %s sink failed: %v", sink, err)
		}
		fmt.Println()
	}
}
