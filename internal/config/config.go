package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type Config struct {
	// HTTP API
	Port     string
	APIToken string

	// Document store backend of the API
	DataBackend  string
	SQLiteDBPath string
	SeedDir      string

	// AMQP; an empty URL disables events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets reports
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Report worker start-up backfill; BackfillUsers is comma separated.
	BackfillUsers  string
	BackfillMonths int

	// Client side
	RemoteAPIURL  string
	RemoteTimeout time.Duration
	LocalDBPath   string
	UserID        string

	// CategoryTypes is the raw CATEGORY_TYPES override.
	CategoryTypes string
	LogLevel      string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		APIToken: getEnv("API_TOKEN", ""),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		SeedDir:      getEnv("SEED_DIR", "data/seed"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "user_data_updated"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Reports"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		BackfillUsers:  getEnv("BACKFILL_USERS", ""),
		BackfillMonths: getEnvInt("BACKFILL_MONTHS", 12),

		RemoteAPIURL:  getEnv("REMOTE_API_URL", "http://localhost:8081"),
		RemoteTimeout: getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),
		LocalDBPath:   getEnv("LOCAL_DB_PATH", "./data/local.db"),
		UserID:        getEnv("FINTRACK_USER_ID", ""),

		CategoryTypes: getEnv("CATEGORY_TYPES", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureDir(c.SQLiteDBPath); err != nil {
			errors = append(errors, err.Error())
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.DataBackend))
	}

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

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if u, err := url.Parse(c.RemoteAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errors = append(errors, fmt.Sprintf("invalid remote API URL '%s': must be http or https", c.RemoteAPIURL))
	}
	if c.RemoteTimeout < 100*time.Millisecond || c.RemoteTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid remote timeout %v: must be between 100ms and 5m", c.RemoteTimeout))
	}

	if _, err := core.ParseCategoryTypes(c.CategoryTypes); err != nil {
		errors = append(errors, fmt.Sprintf("invalid CATEGORY_TYPES: %v", err))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateWorker checks the settings the report worker cannot run without.
func (c *Config) ValidateWorker() error {
	var errors []string
	// The worker reads the documents the API stored, so it needs the shared
	// SQLite file; a memory backend would be private to the worker.
	if c.DataBackend != "sqlite" {
		errors = append(errors, fmt.Sprintf("DATA_BACKEND must be 'sqlite' for the report worker, got '%s'", c.DataBackend))
	} else if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLITE_DB_PATH is required by the report worker")
	}
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required by the report worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required by the report worker")
	}
	if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided")
	}
	if c.BackfillMonths < 1 || c.BackfillMonths > 36 {
		errors = append(errors, fmt.Sprintf("invalid BACKFILL_MONTHS %d: must be between 1 and 36", c.BackfillMonths))
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// BackfillUserIDs splits BACKFILL_USERS, dropping blanks.
func (c *Config) BackfillUserIDs() []string {
	var ids []string
	for _, id := range strings.Split(c.BackfillUsers, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Categories parses CATEGORY_TYPES on top of the default mapping.
func (c *Config) Categories() core.CategoryTypes {
	types, err := core.ParseCategoryTypes(c.CategoryTypes)
	if err != nil {
		return core.DefaultCategoryTypes()
	}
	return types
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create database directory '%s': %v", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
