package appenv

import (
	"log/slog"
	"os"
	"strings"
)

// Env is the runtime environment taken from APP_ENV.
type Env string

const (
	Production  Env = "production"
	Development Env = "development"
	Test        Env = "test"
)

// Current returns the effective environment. Empty or unknown values count as production.
func Current() Env {
	switch Env(strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))) {
	case Test:
		return Test
	case Development:
		return Development
	default:
		return Production
	}
}

func IsProduction() bool  { return Current() == Production }
func IsDevelopment() bool { return Current() == Development }
func IsTest() bool        { return Current() == Test }

// LogLevel is the minimum level for application logs: debug in development, info elsewhere.
func LogLevel() slog.Level {
	if IsDevelopment() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
