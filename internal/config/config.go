package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"spendwise/internal/backend"
	"spendwise/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// AMQP (optional; empty URL disables save events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker: backend receiving a copy of every saved table
	MirrorBackend string

	// Presentation
	CurrencySymbol string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", string(backend.CSVBackend)),
		DataDir:      getEnv("DATA_DIR", "."),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendwise.db"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendwise"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expenses_saved"),

		MirrorBackend: getEnv("MIRROR_BACKEND", ""),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", core.DefaultCurrencySymbol),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Backend converts the storage settings for the backend factory.
func (c *Config) Backend() backend.Config {
	return backend.Config{
		Type:                     backend.BackendType(c.DataBackend),
		DataDirectory:            c.DataDir,
		SQLiteDBPath:             c.SQLiteDBPath,
		GoogleSpreadsheetID:      c.GoogleSpreadsheetID,
		GoogleServiceAccountJSON: c.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: c.GoogleServiceAccountFile,
	}
}

// Mirror is Backend with the type replaced by MirrorBackend.
func (c *Config) Mirror() backend.Config {
	bc := c.Backend()
	bc.Type = backend.BackendType(c.MirrorBackend)
	return bc
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !backend.BackendType(c.DataBackend).IsValid() {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, backend.ValidTypes()))
	} else {
		errors = append(errors, c.validateBackend(backend.BackendType(c.DataBackend))...)
	}

	if c.MirrorBackend != "" {
		if !backend.BackendType(c.MirrorBackend).IsValid() {
			errors = append(errors, fmt.Sprintf("invalid mirror backend '%s': must be one of %v", c.MirrorBackend, backend.ValidTypes()))
		} else if c.MirrorBackend != c.DataBackend {
			errors = append(errors, c.validateBackend(backend.BackendType(c.MirrorBackend))...)
		}
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

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker checks the settings only the mirror worker needs.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the mirror worker")
	}
	if c.MirrorBackend == "" {
		errors = append(errors, "mirror backend is required for the mirror worker")
	} else if c.MirrorBackend == c.DataBackend {
		errors = append(errors, fmt.Sprintf("mirror backend '%s' must differ from the data backend", c.MirrorBackend))
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateBackend(kind backend.BackendType) []string {
	var errors []string
	switch kind {
	case backend.CSVBackend:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using csv backend")
		} else if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory '%s' does not exist", c.DataDir))
		}
	case backend.SQLiteBackend:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
			break
		}
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case backend.SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
