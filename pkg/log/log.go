// Package log builds the application logger.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/config"
)

// NewLogger returns the logger described by cfg and the log file it writes
// to, if any. The caller closes the file.
//
// Production deployments log JSON unless a format is configured, and
// PATHWAY_DEBUG / PATHWAY_VERBOSE lower the level to debug.
func NewLogger(cfg *config.Config) (*log.Logger, *os.File, error) {
	if cfg == nil {
		return nil, nil, config.ErrNilConfig
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          strings.ToLower(cfg.Name),
	})

	switch {
	case config.IsVerbose():
		logger.SetReportCaller(true)
		fallthrough
	case config.IsDebug():
		logger.SetLevel(log.DebugLevel)
	}

	if cfg.Log.TimeFormat != "" {
		logger.SetTimeFormat(cfg.Log.TimeFormat)
	}

	format := strings.ToLower(cfg.Log.Format)
	if format == "" && cfg.IsProduction() {
		format = "json"
	}
	switch format {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}

	if cfg.Log.Path == "" {
		return logger, nil, nil
	}

	f, err := os.OpenFile(cfg.Log.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}
	logger.SetOutput(f)

	return logger, f, nil
}
