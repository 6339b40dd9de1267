package session

import "time"

// Config holds session store configuration
type Config struct {
	// CookieName is the name of the session cookie (default: "session")
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session"`

	// MaxAge is the session lifetime; records older than this are removed
	// by the next write-triggered sweep (default: 24h)
	MaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName: "session",
		MaxAge:     24 * time.Hour,
	}
}
