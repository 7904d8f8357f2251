// Package compression provides gzip compression for snapshot payloads.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/snapkv/snapkv/pkg/errclass"
)

// Level represents the compression level.
type Level int

const (
	// LevelNone disables compression.
	LevelNone Level = 0
	// LevelFast uses fastest compression (gzip level 1).
	LevelFast Level = 1
	// LevelDefault uses default compression (gzip level 6).
	LevelDefault Level = 6
	// LevelMax uses maximum compression (gzip level 9).
	LevelMax Level = 9
)

// Compressor applies one compression level to byte payloads.
type Compressor struct {
	level Level
}

// New creates a compressor with the specified level. Level 0 means no
// compression.
func New(level Level) *Compressor {
	if level <= LevelNone {
		return &Compressor{level: LevelNone}
	}
	return &Compressor{level: level}
}

// Parse creates a compressor from a settings string.
// Valid values: "none", "fast", "default", "max".
func Parse(level string) (*Compressor, error) {
	switch strings.ToLower(level) {
	case "", "none", "0":
		return New(LevelNone), nil
	case "fast", "1":
		return New(LevelFast), nil
	case "default", "6":
		return New(LevelDefault), nil
	case "max", "9":
		return New(LevelMax), nil
	default:
		return nil, errclass.ErrInvalidConfig.WithMessagef("compression level %q, want none, fast, default, or max", level)
	}
}

// Enabled returns true if compression is enabled.
func (c *Compressor) Enabled() bool {
	return c.level != LevelNone
}

// String returns the settings spelling of the level.
func (c *Compressor) String() string {
	switch c.level {
	case LevelNone:
		return "none"
	case LevelFast:
		return "fast"
	case LevelDefault:
		return "default"
	case LevelMax:
		return "max"
	default:
		return fmt.Sprintf("level-%d", c.level)
	}
}

// Compress returns the gzip form of data, or data unchanged when disabled.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	if !c.Enabled() {
		return data, nil
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, int(c.level))
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a gzip payload.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer r.Close()

	result, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return result, nil
}

// IsCompressed reports whether data starts with the gzip magic.
func IsCompressed(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}
