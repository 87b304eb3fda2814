// Package config holds hdsprobe's runtime settings: the manifest to
// open, retry/quality policy, and log verbosity.
package config

import (
	"fmt"

	"github.com/neutrino-images/ni-ffmpeg/logger"
)

// Config holds hdsprobe's resolved settings.
type Config struct {
	ManifestURL string
	Quality     string
	Retries     int
	LogLevel    logger.Level
}

// ParseLogLevel maps a CLI-friendly level name to a logger.Level.
func ParseLogLevel(s string) (logger.Level, error) {
	switch s {
	case "debug":
		return logger.Debug, nil
	case "info", "":
		return logger.Info, nil
	case "warn":
		return logger.Warn, nil
	case "error":
		return logger.Error, nil
	default:
		return 0, fmt.Errorf("config: unknown log level %q", s)
	}
}
