// Package config provides engine-level settings for snapkv stores.
//
// Settings come from three layers, later layers overriding earlier ones:
// built-in defaults, a YAML settings file, and KVS_* environment
// variables (KVS_SNAPSHOT_MAX_COUNT overrides snapshot.max_count).
package config

import (
	"os"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/snapkv/snapkv/internal/compression"
	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/fsutil"
	"github.com/snapkv/snapkv/pkg/template"
)

// EnvPrefix is the environment variable prefix for overrides.
const EnvPrefix = "KVS_"

// DefaultFileName is the conventional settings file name inside a store
// directory.
const DefaultFileName = "kvs.yaml"

// Settings holds engine-level tunables, as opposed to the per-instance
// open options.
type Settings struct {
	Snapshot SnapshotSettings `koanf:"snapshot" yaml:"snapshot"`
	Seal     SealSettings     `koanf:"seal" yaml:"seal"`
	Audit    AuditSettings    `koanf:"audit" yaml:"audit"`
	Logging  LoggingSettings  `koanf:"logging" yaml:"logging"`
}

// SnapshotSettings configures snapshot retention and encoding.
type SnapshotSettings struct {
	// MaxCount is the retention capacity. Flushing beyond it evicts the
	// oldest snapshot. Must be at least 1.
	MaxCount    int    `koanf:"max_count" yaml:"max_count"`
	Compression string `koanf:"compression" yaml:"compression"` // none, fast, default, max
}

// SealSettings configures encryption-at-rest for snapshot payloads.
type SealSettings struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	KeyFile string `koanf:"key_file" yaml:"key_file"`
}

// AuditSettings configures the append-only audit trail.
type AuditSettings struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Path    string `koanf:"path" yaml:"path"`
}

// LoggingSettings configures logging behavior.
type LoggingSettings struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"` // json, text
}

// Default returns the default settings.
func Default() *Settings {
	return &Settings{
		Snapshot: SnapshotSettings{
			MaxCount:    3,
			Compression: "none",
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads settings from a YAML file and applies KVS_* environment
// overrides on top. An absent file is fine; defaults still apply.
func Load(path string) (*Settings, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
				return nil, errclass.ErrInvalidConfig.WithMessagef("load settings %s: %v", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, errclass.ErrIO.WithMessagef("stat settings %s: %v", path, err)
		}
	}

	// KVS_SNAPSHOT_MAX_COUNT -> snapshot.max_count. Keys are two levels
	// deep, so only the first underscore separates sections.
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.Replace(s, "_", ".", 1)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		return nil, errclass.ErrInvalidConfig.WithMessagef("load environment: %v", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errclass.ErrInvalidConfig.WithMessagef("parse settings: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes settings to a YAML file atomically.
func Save(path string, cfg *Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errclass.ErrInvalidConfig.WithMessagef("marshal settings: %v", err)
	}
	if err := fsutil.AtomicWrite(path, data, 0o644); err != nil {
		return errclass.ErrIO.WithMessagef("write settings %s: %v", path, err)
	}
	return nil
}

// Validate checks the settings for violations.
func (s *Settings) Validate() error {
	if s.Snapshot.MaxCount < 1 {
		return errclass.ErrInvalidConfig.WithMessagef("snapshot.max_count is %d, must be at least 1", s.Snapshot.MaxCount)
	}
	if _, err := compression.Parse(s.Snapshot.Compression); err != nil {
		return err
	}
	if s.Seal.Enabled && s.Seal.KeyFile == "" {
		return errclass.ErrInvalidConfig.WithMessage("seal.enabled requires seal.key_file")
	}
	switch s.Logging.Format {
	case "", "text", "json":
	default:
		return errclass.ErrInvalidConfig.WithMessagef("logging.format %q, want text or json", s.Logging.Format)
	}
	return nil
}

// Expanded returns a copy with template placeholders in path fields
// expanded, binding {instance} to the given instance id.
func (s *Settings) Expanded(instance string) *Settings {
	out := *s
	out.Seal.KeyFile = template.ExpandPath(s.Seal.KeyFile, instance)
	out.Audit.Path = template.ExpandPath(s.Audit.Path, instance)
	return &out
}
