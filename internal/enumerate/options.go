package enumerate

import "log/slog"

// DefaultMaxFragments bounds the alternatives held by one component or one
// product step.
const DefaultMaxFragments = 1 << 20

// DefaultMaxConfigurations bounds the number of emitted configurations.
const DefaultMaxConfigurations = 1_000_000

type config struct {
	maxFragments      int
	maxConfigurations int
	logger            *slog.Logger
}

func defaultConfig() config {
	return config{
		maxFragments:      DefaultMaxFragments,
		maxConfigurations: DefaultMaxConfigurations,
		logger:            slog.Default(),
	}
}

// Option configures Run.
type Option func(*config)

// WithMaxFragments sets the per-component and per-product-step limit.
// Zero disables it.
func WithMaxFragments(n int) Option {
	return func(c *config) {
		c.maxFragments = n
	}
}

// WithMaxConfigurations sets the limit on final pairs. Zero disables it.
func WithMaxConfigurations(n int) Option {
	return func(c *config) {
		c.maxConfigurations = n
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
