package resolver

import "log/slog"

type config struct {
	logger           *slog.Logger
	federationScopes bool
}

// Option configures Build and NewRegistry.
type Option func(*config)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithFederationScopes makes __resolveReference use the scoped read
// resolver instead of the unscoped one.
func WithFederationScopes(on bool) Option {
	return func(c *config) { c.federationScopes = on }
}
