// Package config loads migrator settings from a YAML file, an optional
// local .env file and the process environment. Environment variables win
// over file values, so credentials can stay out of checked-in configs.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configVersion = 1

// DefaultCheckpointURL is where runs are recorded when no store is
// configured.
const DefaultCheckpointURL = "file://./checkpoints"

// Config is everything a migration needs beyond its CLI flags.
type Config struct {
	Version int `yaml:"version"`

	Tallyfy    TallyfyConfig    `yaml:"tallyfy"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Events     EventsConfig     `yaml:"events"`
	Cache      CacheConfig      `yaml:"cache"`
	Sources    SourcesConfig    `yaml:"sources"`
}

// TallyfyConfig identifies the target organization.
type TallyfyConfig struct {
	APIToken string `yaml:"api_token"`
	OrgID    string `yaml:"org_id"`
	BaseURL  string `yaml:"api_url" validate:"omitempty,url"`

	// Requests per window; zero keeps the client default.
	RateLimitRequests      int `yaml:"rate_limit_requests"       validate:"gte=0"`
	RateLimitWindowSeconds int `yaml:"rate_limit_window_seconds" validate:"gte=0"`
}

// CheckpointConfig selects the run store: file:// roots or postgres:// URLs.
type CheckpointConfig struct {
	URL string `yaml:"url"`
}

// EventsConfig selects the event channel. Without brokers, events stay on an
// in-process channel.
type EventsConfig struct {
	// Brokers is a comma-separated Kafka broker list.
	Brokers string `yaml:"brokers"`
}

// BrokerList returns the configured brokers, nil when event export is off.
func (e EventsConfig) BrokerList() []string {
	return splitList(e.Brokers)
}

// CacheConfig bounds the lookup cache shared by clients.
type CacheConfig struct {
	URL        string `yaml:"url"`
	MaxEntries int    `yaml:"max_entries" validate:"gte=0"`
	TTLSeconds int    `yaml:"ttl_seconds" validate:"gte=0"`
}

// SourcesConfig carries one section per supported vendor. Sections for
// unused vendors stay zero-valued; credentials are checked only when a
// connector is created.
type SourcesConfig struct {
	Asana         AsanaConfig         `yaml:"asana"`
	Basecamp      BasecampConfig      `yaml:"basecamp"`
	ClickUp       ClickUpConfig       `yaml:"clickup"`
	Monday        MondayConfig        `yaml:"monday"`
	Kissflow      KissflowConfig      `yaml:"kissflow"`
	Pipefy        PipefyConfig        `yaml:"pipefy"`
	ProcessStreet ProcessStreetConfig `yaml:"process_street"`
	Typeform      TypeformConfig      `yaml:"typeform"`
	Rocketlane    RocketlaneConfig    `yaml:"rocketlane"`
	GoogleForms   GoogleFormsConfig   `yaml:"google_forms"`
}

type AsanaConfig struct {
	AccessToken string `yaml:"access_token"`
	Workspace   string `yaml:"workspace"`
	BaseURL     string `yaml:"base_url" validate:"omitempty,url"`
}

type BasecampConfig struct {
	AccessToken string `yaml:"access_token"`
	AccountID   string `yaml:"account_id"`
	UserAgent   string `yaml:"user_agent"`
	BaseURL     string `yaml:"base_url" validate:"omitempty,url"`
}

type ClickUpConfig struct {
	AccessToken string `yaml:"access_token"`
	Team        string `yaml:"team"`
	BaseURL     string `yaml:"base_url" validate:"omitempty,url"`
}

type MondayConfig struct {
	APIToken string `yaml:"api_token"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
}

type KissflowConfig struct {
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Subdomain       string `yaml:"subdomain"`
	AccountID       string `yaml:"account_id"`
	BaseURL         string `yaml:"base_url" validate:"omitempty,url"`
}

type PipefyConfig struct {
	APIToken     string `yaml:"api_token"`
	Organization string `yaml:"organization"`
	BaseURL      string `yaml:"base_url" validate:"omitempty,url"`
}

type ProcessStreetConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

type TypeformConfig struct {
	AccessToken string `yaml:"access_token"`
	BaseURL     string `yaml:"base_url" validate:"omitempty,url"`
}

type RocketlaneConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

type GoogleFormsConfig struct {
	AccessToken string   `yaml:"access_token"`
	FormIDs     []string `yaml:"form_ids"`
	BaseURL     string   `yaml:"base_url" validate:"omitempty,url"`
}

// LoadEnv pulls a local .env file into the process environment. A missing
// file is fine; anything else is worth a warning.
func LoadEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}
}

// Load reads the YAML file at path (when non-empty), applies environment
// overrides and defaults, and validates the result. An empty path yields a
// config driven purely by the environment.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		if cfg.Version != 0 && cfg.Version != configVersion {
			return nil, fmt.Errorf("unsupported config version: %d", cfg.Version)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints. Credential presence is the client
// constructors' concern, so report-only commands work without any tokens.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	override(&c.Tallyfy.APIToken, "TALLYFY_API_TOKEN")
	override(&c.Tallyfy.OrgID, "TALLYFY_ORG_ID")
	override(&c.Tallyfy.BaseURL, "TALLYFY_API_URL")

	override(&c.Checkpoint.URL, "DATABASE_URL")
	override(&c.Events.Brokers, "KAFKA_BROKERS")
	override(&c.Cache.URL, "CACHE_URL")

	override(&c.Sources.Asana.AccessToken, "ASANA_ACCESS_TOKEN")
	override(&c.Sources.Asana.Workspace, "ASANA_WORKSPACE")
	override(&c.Sources.Basecamp.AccessToken, "BASECAMP_ACCESS_TOKEN")
	override(&c.Sources.Basecamp.AccountID, "BASECAMP_ACCOUNT_ID")
	override(&c.Sources.ClickUp.AccessToken, "CLICKUP_API_TOKEN")
	override(&c.Sources.ClickUp.Team, "CLICKUP_TEAM")
	override(&c.Sources.Monday.APIToken, "MONDAY_API_TOKEN")
	override(&c.Sources.Kissflow.AccessKeyID, "KISSFLOW_ACCESS_KEY_ID")
	override(&c.Sources.Kissflow.AccessKeySecret, "KISSFLOW_ACCESS_KEY_SECRET")
	override(&c.Sources.Kissflow.Subdomain, "KISSFLOW_SUBDOMAIN")
	override(&c.Sources.Kissflow.AccountID, "KISSFLOW_ACCOUNT_ID")
	override(&c.Sources.Pipefy.APIToken, "PIPEFY_API_TOKEN")
	override(&c.Sources.Pipefy.Organization, "PIPEFY_ORGANIZATION")
	override(&c.Sources.ProcessStreet.APIKey, "PROCESS_STREET_API_KEY")
	override(&c.Sources.Typeform.AccessToken, "TYPEFORM_ACCESS_TOKEN")
	override(&c.Sources.Rocketlane.APIKey, "ROCKETLANE_API_KEY")
	override(&c.Sources.GoogleForms.AccessToken, "GOOGLE_FORMS_ACCESS_TOKEN")

	if ids := os.Getenv("GOOGLE_FORMS_FORM_IDS"); ids != "" {
		c.Sources.GoogleForms.FormIDs = splitList(ids)
	}
}

func (c *Config) applyDefaults() {
	if c.Checkpoint.URL == "" {
		c.Checkpoint.URL = DefaultCheckpointURL
	}
}

func override(target *string, env string) {
	if value := os.Getenv(env); value != "" {
		*target = value
	}
}

func splitList(value string) []string {
	var out []string

	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
