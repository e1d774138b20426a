// Package logging builds the charm loggers used by the CLI and server.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// AppName prefixes every log line.
const AppName = "boxreport"

// New returns a logger writing to w at the named level. format is "text"
// (default), "logfmt" or "json".
func New(w io.Writer, level, format string) (*charmLog.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := charmLog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", level, err)
	}
	if w == nil {
		w = io.Discard
	}

	formatter := charmLog.TextFormatter
	switch strings.ToLower(format) {
	case "", "text":
	case "logfmt":
		formatter = charmLog.LogfmtFormatter
	case "json":
		formatter = charmLog.JSONFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           lvl,
		Prefix:          AppName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	}), nil
}
