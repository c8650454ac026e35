// Package config holds the dashboard service configuration. Values are read
// with goconfig: defaults, then a JSON config file, environment variables and
// command-line flags.
package config

import (
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	HttpAddr       string        `usage:"HTTP address the dashboard listens on"`
	BackendURL     string        `usage:"base URL of the statement-processing backend"`
	BackendTimeout time.Duration `usage:"timeout for a single backend request, 0 for none"`
	BackendRPS     float64       `usage:"max backend requests per second, 0 for unlimited"`
	PageSize       int           `usage:"default table page size"`
	NatsURL        string        `usage:"NATS server URL for notice fan-out, empty to disable"`
	NatsSubject    string        `usage:"NATS subject notices are published on"`
	NoticeBuffer   int           `usage:"number of recent notices kept for polling"`
	StaticDir      string        `usage:"directory with the dashboard SPA, empty to disable"`
	LogLevel       string        `usage:"log level: debug, info, warn, error"`
	Version        bool          `usage:"show version and exit"`
	ShowConfig     bool          `usage:"print config"`
}

func Default() Config {
	return Config{
		HttpAddr:       ":8080",
		BackendURL:     "http://localhost:3000",
		BackendTimeout: 0,
		BackendRPS:     0,
		PageSize:       5,
		NatsURL:        "",
		NatsSubject:    "statement-desk.notices",
		NoticeBuffer:   50,
		StaticDir:      "",
		LogLevel:       "info",
	}
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
