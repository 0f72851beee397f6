// Package config provides YAML-based configuration loading for Oceanwatch.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Oceanwatch configuration, loaded from
// oceanwatch.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Bluesky  BlueskyConfig  `yaml:"bluesky"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Notify   NotifyConfig   `yaml:"notify"`
	Chat     ChatConfig     `yaml:"chat"`
	Posting  PostingConfig  `yaml:"posting"`
}

// DatabaseConfig selects the GORM driver and connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, or postgres
	DSN    string `yaml:"dsn"`
}

// StorageConfig holds filesystem paths for stored sighting images.
type StorageConfig struct {
	ImagesDir string `yaml:"images_dir"`
}

// TwilioConfig holds webhook server settings and the credentials used to
// fetch MMS media from Twilio.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	Port       int    `yaml:"port"`
}

// BlueskyConfig holds credentials for the publishing account.
type BlueskyConfig struct {
	Host        string `yaml:"host"`
	Handle      string `yaml:"handle"`
	AppPassword string `yaml:"app_password"`
}

// GeocoderConfig points at a Nominatim-compatible endpoint.
type GeocoderConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

// NotifyConfig configures the admin notification sinks. Any sink with empty
// credentials is disabled.
type NotifyConfig struct {
	SlackToken     string `yaml:"slack_token"`
	SlackChannel   string `yaml:"slack_channel"`
	DiscordToken   string `yaml:"discord_token"`
	DiscordChannel string `yaml:"discord_channel"`
}

// ChatConfig tunes the conversation flow.
type ChatConfig struct {
	AdminContributorID uint `yaml:"admin_contributor_id"`
	SimilarThreshold   int  `yaml:"similar_threshold"` // max Hamming distance flagged as near-duplicate
}

// PostingConfig controls the scheduled Bluesky batch posts.
type PostingConfig struct {
	Schedule   string `yaml:"schedule"` // 5-field cron expression
	BatchLimit int    `yaml:"batch_limit"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "oceanwatch.db"
	}
	if c.Storage.ImagesDir == "" {
		c.Storage.ImagesDir = "images"
	}
	if c.Twilio.Port == 0 {
		c.Twilio.Port = 8080
	}
	if c.Bluesky.Host == "" {
		c.Bluesky.Host = "https://bsky.social"
	}
	if c.Geocoder.BaseURL == "" {
		c.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = "OceanwatchBot/1.0"
	}
	if c.Chat.AdminContributorID == 0 {
		c.Chat.AdminContributorID = 1
	}
	if c.Chat.SimilarThreshold == 0 {
		c.Chat.SimilarThreshold = 5
	}
	if c.Posting.Schedule == "" {
		c.Posting.Schedule = "0 */6 * * *"
	}
	if c.Posting.BatchLimit == 0 {
		c.Posting.BatchLimit = 4
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of sqlite, mysql, postgres", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required")
	}
	if c.Chat.SimilarThreshold < 0 || c.Chat.SimilarThreshold > 64 {
		errs = append(errs, "chat.similar_threshold must be between 0 and 64")
	}
	if c.Posting.BatchLimit < 0 || c.Posting.BatchLimit > 4 {
		// Bluesky allows at most 4 images per post, one image per sighting.
		errs = append(errs, "posting.batch_limit must be between 1 and 4")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
