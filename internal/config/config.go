package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"

	"lifedash/internal/log"
	"lifedash/internal/sheets"
)

// Backends a deployment can read and write through.
const (
	BackendScript = "script"
	BackendSheets = "sheets"
	BackendMemory = "memory"
)

var validBackends = []string{BackendScript, BackendSheets, BackendMemory}

const minSecretLength = 16

type Config struct {
	// HTTP Server
	Port string `env:"PORT" envDefault:"8080"`

	// Backend selection
	DataBackend string `env:"DATA_BACKEND" envDefault:"memory"`

	// Scripted endpoint
	ScriptURL        string        `env:"SCRIPT_URL"`
	ScriptMaxRetries int           `env:"SCRIPT_MAX_RETRIES" envDefault:"0"`
	StoreTimeout     time.Duration `env:"STORE_TIMEOUT" envDefault:"30s"`

	// Google Sheets
	GoogleSpreadsheetID      string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Memory backend seed directory
	MemoryDataDir string `env:"MEMORY_DATA_DIR" envDefault:"data"`

	// Sheet names
	SheetFinance      string `env:"SHEET_FINANCE" envDefault:"Daily"`
	SheetDreams       string `env:"SHEET_DREAMS" envDefault:"Dreams"`
	SheetDreamTracker string `env:"SHEET_DREAM_TRACKER" envDefault:"Dream Tracker"`
	SheetFuel         string `env:"SHEET_FUEL" envDefault:"Fuel Trackers"`
	SheetLogin        string `env:"SHEET_LOGIN" envDefault:"Login"`

	// Write journal (optional)
	SQLiteDBPath     string        `env:"SQLITE_DB_PATH"`
	JournalRetention time.Duration `env:"JOURNAL_RETENTION" envDefault:"720h"`

	// AMQP (optional)
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"lifedash"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"write_events"`

	// Sessions
	SessionSecret      string        `env:"SESSION_SECRET"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	CredentialCacheTTL time.Duration `env:"CREDENTIAL_CACHE_TTL" envDefault:"5m"`
	SecureCookies      bool          `env:"SECURE_COOKIES" envDefault:"false"`

	// Rate limiting, requests per minute per client
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	// Observability
	SentryDSN   string `env:"SENTRY_DSN"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`

	// Zone used to render dates
	Timezone string `env:"TIMEZONE" envDefault:"Local"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// SheetNames returns the configured sheet names.
func (c *Config) SheetNames() sheets.Names {
	return sheets.Names{
		Finance:      c.SheetFinance,
		Dreams:       c.SheetDreams,
		DreamTracker: c.SheetDreamTracker,
		Fuel:         c.SheetFuel,
		Login:        c.SheetLogin,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// JournalEnabled reports whether writes are journaled to SQLite.
func (c *Config) JournalEnabled() bool {
	return c.SQLiteDBPath != ""
}

// AMQPEnabled reports whether write events are published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendScript:
		if c.ScriptURL == "" {
			errors = append(errors, "SCRIPT_URL is required when using script backend")
		} else if u, err := url.Parse(c.ScriptURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid SCRIPT_URL '%s': %v", c.ScriptURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid SCRIPT_URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
	}

	if c.ScriptMaxRetries < 0 || c.ScriptMaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid script max retries %d: must be between 0 and 10", c.ScriptMaxRetries))
	}
	if c.StoreTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid store timeout %v: must be at least 1 second", c.StoreTimeout))
	}

	sheetNames := []struct{ key, value string }{
		{"SHEET_FINANCE", c.SheetFinance},
		{"SHEET_DREAMS", c.SheetDreams},
		{"SHEET_DREAM_TRACKER", c.SheetDreamTracker},
		{"SHEET_FUEL", c.SheetFuel},
		{"SHEET_LOGIN", c.SheetLogin},
	}
	for _, n := range sheetNames {
		if strings.TrimSpace(n.value) == "" {
			errors = append(errors, fmt.Sprintf("%s cannot be empty", n.key))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.JournalEnabled() && c.JournalRetention < time.Hour {
		errors = append(errors, fmt.Sprintf("invalid journal retention %v: must be at least 1 hour", c.JournalRetention))
	}

	if len(c.SessionSecret) < minSecretLength {
		errors = append(errors, fmt.Sprintf("SESSION_SECRET must be at least %d characters", minSecretLength))
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.CredentialCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid credential cache TTL %v: must not be negative", c.CredentialCacheTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}
	if _, err := c.Location(); err != nil {
		errors = append(errors, err.Error())
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
