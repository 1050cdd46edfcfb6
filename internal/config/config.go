package config

import (
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all pipeline configuration
type Config struct {
	Accounts AccountsConfig `toml:"accounts"`
	Scraping ScrapingConfig `toml:"scraping"`
	Output   OutputConfig   `toml:"output"`
	Database DatabaseConfig `toml:"database"`
	Tracker  TrackerConfig  `toml:"tracker"`
}

type AccountsConfig struct {
	Handles []string `toml:"handles"`
}

type ScrapingConfig struct {
	MaxTweets     int  `toml:"max_tweets"`
	Headless      bool `toml:"headless"`
	IntervalHours int  `toml:"interval_hours"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// TrackerConfig configures the remote link-tracking service. Host and APIKey
// are required; ListID is optional. FailClosed controls how an existence-check
// error is treated: false (default) re-submits the link, true counts it as
// failed without submitting.
type TrackerConfig struct {
	Host        string `toml:"host"`
	APIKey      string `toml:"api_key"`
	ListID      int    `toml:"list_id"`
	TimeoutSecs int    `toml:"timeout_secs"`
	FailClosed  bool   `toml:"fail_closed"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Accounts: AccountsConfig{
			Handles: []string{},
		},
		Scraping: ScrapingConfig{
			MaxTweets:     200,
			Headless:      true,
			IntervalHours: 6,
		},
		Output: OutputConfig{
			Dir: "pipeline",
		},
		Database: DatabaseConfig{
			Path: "pipeline/tweets.db",
		},
		Tracker: TrackerConfig{
			TimeoutSecs: 30,
		},
	}
}

// Load reads config from the given path, then overlays tracker secrets from
// the environment. A .env file in the working directory is loaded first if
// present (missing is fine).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment only")
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		log.Printf("Config file %s not found, using defaults", path)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto file-sourced values.
// Environment wins so secrets never have to live in the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("TRACKER_HOST"); v != "" {
		c.Tracker.Host = v
	}
	if v := os.Getenv("TRACKER_API_KEY"); v != "" {
		c.Tracker.APIKey = v
	}
	if v := os.Getenv("TRACKER_LIST_ID"); v != "" {
		var id int
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			c.Tracker.ListID = id
		} else {
			log.Printf("Ignoring non-numeric TRACKER_LIST_ID %q", v)
		}
	}
}

// Validate checks startup requirements. Missing tracker host or API key is
// fatal; a missing list id only degrades link submissions (no list
// membership) and is reported as a warning.
func (c *Config) Validate() error {
	if c.Tracker.Host == "" {
		return fmt.Errorf("tracker host is not configured (set tracker.host or TRACKER_HOST)")
	}
	if c.Tracker.APIKey == "" {
		return fmt.Errorf("tracker API key is not configured (set tracker.api_key or TRACKER_API_KEY)")
	}
	if c.Tracker.ListID == 0 {
		log.Println("Warning: no tracker list id configured - links will be created without list membership")
	}
	if c.Scraping.MaxTweets <= 0 {
		return fmt.Errorf("scraping.max_tweets must be positive, got %d", c.Scraping.MaxTweets)
	}
	return nil
}

// Save writes config to the given path
func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
