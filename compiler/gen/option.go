package gen

import (
	"errors"
	"log/slog"
)

// Config holds the compiler configuration.
type Config struct {
	// Logger receives compile warnings. Defaults to slog.Default.
	Logger *slog.Logger
	// Strict fails compilation on malformed fields and hides the generated
	// CRUD fields of every kind a model has no scope for.
	Strict bool
	// DefaultAdapter owns the models that name no adapter.
	DefaultAdapter string
}

// Option configures the compiler.
type Option func(*Config) error

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithStrict enables strict mode.
func WithStrict(strict bool) Option {
	return func(c *Config) error {
		c.Strict = strict
		return nil
	}
}

// WithDefaultAdapter sets the adapter of models that name none.
func WithDefaultAdapter(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("DefaultAdapter", nil, "adapter name cannot be empty")
		}
		c.DefaultAdapter = name
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
