package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Input    InputConfig
	Output   OutputConfig
	PDF      PDFConfig
	Database DatabaseConfig
	Log      LogConfig
}

// InputConfig holds discovery-related configuration
type InputConfig struct {
	Dir          string
	KeywordsFile string
	SkipHidden   bool
}

// OutputConfig holds output file locations
type OutputConfig struct {
	XLSXPath string
	JSONPath string
	Strict   bool
}

// PDFConfig holds PDF reading configuration
type PDFConfig struct {
	Backend   string // "native" | "pdftotext"
	Pdftotext string
	Timeout   time.Duration
}

// DatabaseConfig holds run ledger configuration; an empty DSN disables the ledger
type DatabaseConfig struct {
	DSN         string
	MaxConns    int
	DialTimeout time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Input: InputConfig{
			Dir:          getEnv("EVENTFORMS_INPUT_DIR", "inputs"),
			KeywordsFile: getEnv("EVENTFORMS_KEYWORDS_FILE", ""),
			SkipHidden:   getEnvAsBool("EVENTFORMS_SKIP_HIDDEN", true),
		},
		Output: OutputConfig{
			XLSXPath: getEnv("EVENTFORMS_OUTPUT_XLSX", "output.xlsx"),
			JSONPath: getEnv("EVENTFORMS_OUTPUT_JSON", "output.json"),
			Strict:   getEnvAsBool("EVENTFORMS_STRICT", false),
		},
		PDF: PDFConfig{
			Backend:   getEnv("EVENTFORMS_PDF_BACKEND", "native"),
			Pdftotext: getEnv("EVENTFORMS_PDFTOTEXT", "pdftotext"),
			Timeout:   getEnvAsDuration("EVENTFORMS_PDF_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("EVENTFORMS_DB_URL", ""),
			MaxConns:    getEnvAsInt("EVENTFORMS_DB_MAX_CONNS", 4),
			DialTimeout: getEnvAsDuration("EVENTFORMS_DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("EVENTFORMS_LOG_LEVEL", "info"),
			Format: getEnv("EVENTFORMS_LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("input dir", c.Input.Dir, Required).
		Field("xlsx output", c.Output.XLSXPath, Required).
		Field("json output", c.Output.JSONPath, Required).
		Field("pdf backend", c.PDF.Backend, OneOf("native", "pdftotext")).
		Field("log format", c.Log.Format, OneOf("text", "json"))
	if c.Output.XLSXPath != "" && c.Output.XLSXPath == c.Output.JSONPath {
		v.Add(ValidationError{Field: "json output", Value: c.Output.JSONPath, Message: "must differ from xlsx output"})
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// Normalize lowercases enum-like values so flags and env accept any case.
func (c *Config) Normalize() {
	c.PDF.Backend = strings.ToLower(strings.TrimSpace(c.PDF.Backend))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}
