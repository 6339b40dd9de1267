package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Store
type Option func(*Store)

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(s *Store) {
		if config.CookieName != "" {
			s.cookieName = config.CookieName
		}
		if config.MaxAge > 0 {
			s.maxAge = config.MaxAge
		}
	}
}

// WithCookieName sets the session cookie name
func WithCookieName(name string) Option {
	return func(s *Store) {
		s.cookieName = name
	}
}

// WithMaxAge sets the maximum session age
func WithMaxAge(maxAge time.Duration) Option {
	return func(s *Store) {
		s.maxAge = maxAge
	}
}

// WithClock sets the time source, used by tests to control expiry
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets a custom logger for the store
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}
