// File: config.go
// License: Apache-2.0
//
// Loop configuration and functional options.

package rotor

import "github.com/allchain/rotor/reactor"

// Config holds the loop tuning parameters.
type Config struct {
	// BatchSize caps how many readiness events one poll collects.
	BatchSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize: 128,
	}
}

// Option customizes loop initialization.
type Option[C any] func(*Loop[C])

// WithConfig replaces the default configuration wholesale. A non-positive
// batch size falls back to the default so the loop never polls with an
// empty event buffer.
func WithConfig[C any](cfg *Config) Option[C] {
	return func(l *Loop[C]) {
		if cfg == nil {
			return
		}
		l.cfg = cfg
		if l.cfg.BatchSize <= 0 {
			l.cfg.BatchSize = DefaultConfig().BatchSize
		}
	}
}

// WithBatchSize overrides the default readiness batch size.
func WithBatchSize[C any](n int) Option[C] {
	return func(l *Loop[C]) {
		if n > 0 {
			l.cfg.BatchSize = n
		}
	}
}

// WithPoller installs a specific poller backend instead of the platform
// default from reactor.New. Used by tests and by embedders that share a
// poller.
func WithPoller[C any](p reactor.Poller) Option[C] {
	return func(l *Loop[C]) {
		l.poller = p
	}
}
