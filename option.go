package harmony

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jvdsande/harmony/adapter"
)

// Config holds the configuration of a Persistence.
type Config struct {
	// Logger receives compile warnings and lifecycle logs. Defaults to
	// slog.Default.
	Logger *slog.Logger
	// Strict fails Init on malformed fields and hides the generated CRUD
	// fields of every kind a model has no scope for.
	Strict bool
	// DefaultAdapter serves the models that name no adapter.
	DefaultAdapter string
	// Adapters by name.
	Adapters map[string]adapter.Adapter
	// Events subscribed to the writes of every adapter.
	Events []adapter.Events
	// Concurrency bounds the adapters initialized or closed at once.
	// Zero means no limit.
	Concurrency int
	// FederationScopes runs the model scopes in __resolveReference.
	FederationScopes bool
}

// Option configures a Persistence.
type Option func(*Config) error

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return errors.New("harmony: logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithStrict enables strict compilation.
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
			return errors.New("harmony: default adapter name cannot be empty")
		}
		c.DefaultAdapter = name
		return nil
	}
}

// WithAdapter registers a under name.
func WithAdapter(name string, a adapter.Adapter) Option {
	return func(c *Config) error {
		switch {
		case name == "":
			return errors.New("harmony: adapter name cannot be empty")
		case a == nil:
			return fmt.Errorf("harmony: adapter %q is nil", name)
		}
		if _, ok := c.Adapters[name]; ok {
			return fmt.Errorf("harmony: adapter %q registered twice", name)
		}
		if c.Adapters == nil {
			c.Adapters = make(map[string]adapter.Adapter)
		}
		c.Adapters[name] = a
		return nil
	}
}

// WithEvents subscribes e to the writes of every adapter.
func WithEvents(e adapter.Events) Option {
	return func(c *Config) error {
		if e == nil {
			return errors.New("harmony: events cannot be nil")
		}
		c.Events = append(c.Events, e)
		return nil
	}
}

// WithConcurrency bounds the adapters initialized or closed at once.
func WithConcurrency(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("harmony: invalid concurrency %d", n)
		}
		c.Concurrency = n
		return nil
	}
}

// WithFederationScopes makes __resolveReference run the model scopes.
func WithFederationScopes(enabled bool) Option {
	return func(c *Config) error {
		c.FederationScopes = enabled
		return nil
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
