// Package config provides centralized configuration for csvcore.
// Values come from struct-tag defaults, an optional YAML file and
// environment variables (optionally read from .env files), in that order of
// increasing precedence. Everything is validated up front so a bad setting
// fails fast instead of surfacing halfway through a batch.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all library configuration.
type Config struct {
	Reader  ReaderConfig  `yaml:"reader"`
	Infer   InferConfig   `yaml:"infer"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Logging LoggingConfig `yaml:"logging"`
}

// ReaderConfig holds CSV parsing settings.
type ReaderConfig struct {
	// MaxFileSize is the maximum decompressed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"CSV_MAX_FILE_SIZE" default:"104857600" yaml:"max_file_size"`

	// SniffBytes is how much of the file is sampled for the delimiter (default: 4096)
	SniffBytes int `env:"CSV_SNIFF_BYTES" default:"4096" yaml:"sniff_bytes"`

	// HeaderSearchRows is how many leading rows may hold the header (default: 20)
	HeaderSearchRows int `env:"CSV_HEADER_SEARCH_ROWS" default:"20" yaml:"header_search_rows"`

	// Encodings are tried in order after strict UTF-8
	Encodings []string `env:"CSV_ENCODINGS" default:"latin1,cp1252,iso-8859-1" yaml:"encodings"`

	// Decompress enables transparent gzip/bzip2/xz/zstd/lz4 input (default: true)
	Decompress bool `env:"CSV_DECOMPRESS" default:"true" yaml:"decompress"`
}

// InferConfig holds type inference settings.
type InferConfig struct {
	SampleSize             int     `env:"INFER_SAMPLE_SIZE" default:"20" yaml:"sample_size"`
	DatetimeThreshold      float64 `env:"INFER_DATETIME_THRESHOLD" default:"0.5" yaml:"datetime_threshold"`
	CategoricalMaxDistinct int     `env:"INFER_CATEGORICAL_MAX_DISTINCT" default:"50" yaml:"categorical_max_distinct"`

	// LenientNumbers accepts "$1,200" and "(5)" as numbers (default: false)
	LenientNumbers bool `env:"INFER_LENIENT_NUMBERS" default:"false" yaml:"lenient_numbers"`
}

// IngestConfig holds batch loading settings.
type IngestConfig struct {
	// MaxConcurrent bounds file parses across all batches (default: 4)
	MaxConcurrent int `env:"INGEST_MAX_CONCURRENT" default:"4" yaml:"max_concurrent"`

	// MaxWaitTime is how long a file waits for a parse slot (default: 30s)
	MaxWaitTime time.Duration `env:"INGEST_MAX_WAIT_TIME" default:"30s" yaml:"max_wait_time"`

	// Workers is the number of files parsed at once within a batch (default: 1)
	Workers int `env:"INGEST_WORKERS" default:"1" yaml:"workers"`

	// EventBuffer caps the event channel; 0 sizes it to the batch
	EventBuffer int `env:"INGEST_EVENT_BUFFER" default:"0" yaml:"event_buffer"`

	// VerifyContent re-parses cached files whose content hash changed
	VerifyContent bool `env:"INGEST_VERIFY_CONTENT" default:"false" yaml:"verify_content"`

	// FingerprintKey is the 32-byte HighwayHash key; empty uses a built-in key
	FingerprintKey string `env:"INGEST_FINGERPRINT_KEY" yaml:"fingerprint_key"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info" yaml:"level"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text" yaml:"format"`

	// SeqURL enables shipping logs to a Seq server when set
	SeqURL string `env:"LOG_SEQ_URL" yaml:"seq_url"`

	// AddSource includes file:line in log records (default: false)
	AddSource bool `env:"LOG_ADD_SOURCE" default:"false" yaml:"add_source"`
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Reader.MaxFileSize < 0 {
		errs = append(errs, "CSV_MAX_FILE_SIZE must be non-negative")
	}
	if c.Reader.SniffBytes <= 0 {
		errs = append(errs, "CSV_SNIFF_BYTES must be positive")
	}
	if c.Reader.HeaderSearchRows <= 0 {
		errs = append(errs, "CSV_HEADER_SEARCH_ROWS must be positive")
	}

	if c.Infer.SampleSize <= 0 {
		errs = append(errs, "INFER_SAMPLE_SIZE must be positive")
	}
	if c.Infer.DatetimeThreshold <= 0 || c.Infer.DatetimeThreshold > 1 {
		errs = append(errs, fmt.Sprintf("INFER_DATETIME_THRESHOLD (%v) must be in (0, 1]", c.Infer.DatetimeThreshold))
	}
	if c.Infer.CategoricalMaxDistinct <= 0 {
		errs = append(errs, "INFER_CATEGORICAL_MAX_DISTINCT must be positive")
	}

	if c.Ingest.MaxConcurrent <= 0 {
		errs = append(errs, "INGEST_MAX_CONCURRENT must be positive")
	}
	if c.Ingest.MaxWaitTime <= 0 {
		errs = append(errs, "INGEST_MAX_WAIT_TIME must be positive")
	}
	if c.Ingest.Workers <= 0 {
		errs = append(errs, "INGEST_WORKERS must be positive")
	}
	if c.Ingest.EventBuffer < 0 {
		errs = append(errs, "INGEST_EVENT_BUFFER must be non-negative")
	}
	if k := c.Ingest.FingerprintKey; k != "" && len(k) != 32 {
		errs = append(errs, fmt.Sprintf("INGEST_FINGERPRINT_KEY must be exactly 32 bytes, got %d", len(k)))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The fingerprint key is masked.
func (c *Config) String() string {
	key := ""
	if c.Ingest.FingerprintKey != "" {
		key = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Reader: {MaxFileSize: %d, SniffBytes: %d, HeaderSearchRows: %d, Encodings: %v, Decompress: %v}, ",
		c.Reader.MaxFileSize, c.Reader.SniffBytes, c.Reader.HeaderSearchRows, c.Reader.Encodings, c.Reader.Decompress)
	fmt.Fprintf(&b, "Infer: {SampleSize: %d, DatetimeThreshold: %v, CategoricalMaxDistinct: %d, LenientNumbers: %v}, ",
		c.Infer.SampleSize, c.Infer.DatetimeThreshold, c.Infer.CategoricalMaxDistinct, c.Infer.LenientNumbers)
	fmt.Fprintf(&b, "Ingest: {MaxConcurrent: %d, Workers: %d, EventBuffer: %d, VerifyContent: %v, FingerprintKey: %q}, ",
		c.Ingest.MaxConcurrent, c.Ingest.Workers, c.Ingest.EventBuffer, c.Ingest.VerifyContent, key)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q, Seq: %v}",
		c.Logging.Level, c.Logging.Format, c.Logging.SeqURL != "")
	b.WriteString("}")
	return b.String()
}
