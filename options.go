package edslib

import "go.uber.org/zap"

const defaultTypePin = 64

type config struct {
	log     *zap.Logger
	typePin int
}

func defaultConfig() config {
	return config{log: zap.NewNop(), typePin: defaultTypePin}
}

// Option configures a Database at Open time.
type Option func(*config)

// WithLogger routes engine diagnostics (type builds, buffer misuse) to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTypePin sets how many recently used runtime types stay strongly
// referenced. The weak cache still revives evicted types on demand.
func WithTypePin(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.typePin = n
		}
	}
}
