// Package logging configures the structured logger used across snapkv.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Output format names accepted by New.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options configures the root logger.
type Options struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output format (json, text).
	Format string
	// Output is the output writer (defaults to os.Stderr).
	Output io.Writer
}

// New creates a named structured logger. Store instances derive their
// loggers from it via Named, so instance and component names show up as
// the logger name.
func New(name string, opts Options) hclog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      ParseLevel(opts.Level),
		Output:     output,
		JSONFormat: strings.EqualFold(opts.Format, FormatJSON),
	})
}

// ParseLevel maps a level name to an hclog level. Unknown or empty
// names fall back to info.
func ParseLevel(s string) hclog.Level {
	if s == "" {
		return hclog.Info
	}
	if lvl := hclog.LevelFromString(s); lvl != hclog.NoLevel {
		return lvl
	}
	return hclog.Info
}

// Discard returns a logger that drops everything. Embedders that do not
// configure logging get this one.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
