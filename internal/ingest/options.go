package ingest

import (
	"log/slog"

	"github.com/JonMunkholm/csvcore/internal/config"
	"github.com/JonMunkholm/csvcore/internal/infer"
	"github.com/JonMunkholm/csvcore/internal/reader"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLimiter shares l between coordinators so the parse bound is global.
func WithLimiter(l *Limiter) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithWorkers sets how many files of one batch are parsed at once.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithEventBuffer caps the capacity of each batch's event channel.
// Zero sizes the channel to hold every event of the batch.
func WithEventBuffer(n int) Option {
	return func(c *Coordinator) {
		if n >= 0 {
			c.eventBuffer = n
		}
	}
}

// WithVerifyContent makes cache hits conditional on an unchanged content
// fingerprint. A nil key selects DefaultFingerprintKey.
func WithVerifyContent(key []byte) Option {
	return func(c *Coordinator) {
		c.verify = true
		if len(key) > 0 {
			c.key = key
		}
	}
}

// WithLogger sets the logger used for batch and file events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConfig applies the ingest section of a loaded configuration.
func WithConfig(cfg config.IngestConfig) Option {
	return func(c *Coordinator) {
		c.limiter = NewLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime)
		WithWorkers(cfg.Workers)(c)
		WithEventBuffer(cfg.EventBuffer)(c)
		if cfg.VerifyContent {
			WithVerifyContent([]byte(cfg.FingerprintKey))(c)
		}
	}
}

// NewFromConfig builds a reader, an inferencer and a coordinator from cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	r := reader.New(reader.Options{
		MaxFileSize:      cfg.Reader.MaxFileSize,
		SniffBytes:       cfg.Reader.SniffBytes,
		HeaderSearchRows: cfg.Reader.HeaderSearchRows,
		Encodings:        cfg.Reader.Encodings,
		Decompress:       cfg.Reader.Decompress,
		Logger:           logger,
	})
	inf := infer.New(infer.Options{
		SampleSize:             cfg.Infer.SampleSize,
		DatetimeThreshold:      cfg.Infer.DatetimeThreshold,
		CategoricalMaxDistinct: cfg.Infer.CategoricalMaxDistinct,
		LenientNumbers:         cfg.Infer.LenientNumbers,
		Logger:                 logger,
	})
	return New(r, inf, WithConfig(cfg.Ingest), WithLogger(logger))
}
