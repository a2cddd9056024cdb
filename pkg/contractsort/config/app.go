package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
)

// EnvPrefix marks environment variables that override the config file.
const EnvPrefix = "CONTRACTSORT_"

const maxConfigFileSize = 1024 * 1024

// Naming formats.
const (
	NamingEnhanced = "enhanced"
	NamingSimple   = "simple"
)

// Journal backends.
const (
	JournalNone   = "none"
	JournalMemory = "memory"
	JournalSQLite = "sqlite"
)

// App is the application configuration.
type App struct {
	Log        LogConfig        `koanf:"log"`
	Processing ProcessingConfig `koanf:"processing"`
	Registry   RegistryConfig   `koanf:"registry"`
	Tables     TablesConfig     `koanf:"tables"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// ProcessingConfig controls how a batch classifies and files documents.
type ProcessingConfig struct {
	Workers          int     `koanf:"workers"`
	NamingFormat     string  `koanf:"naming_format"`
	CreateSubfolders *bool   `koanf:"create_subfolders"`
	MaxTextChars     int     `koanf:"max_text_chars"`
	MatchThreshold   float64 `koanf:"match_threshold"`
	YearThreshold    int     `koanf:"year_threshold"`
}

// Subfolders reports whether final/supporting subfolders are created.
func (p ProcessingConfig) Subfolders() bool {
	return p.CreateSubfolders == nil || *p.CreateSubfolders
}

// RegistryConfig locates the registry document and its change journal.
type RegistryConfig struct {
	Filename    string `koanf:"filename"`
	Journal     string `koanf:"journal"`
	JournalPath string `koanf:"journal_path"`
}

// TablesConfig points at optional YAML files that replace the built-in pattern and vendor tables.
type TablesConfig struct {
	Patterns string `koanf:"patterns"`
	Vendors  string `koanf:"vendors"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `koanf:"addr"` // empty disables the endpoint
}

// LoadApp loads configuration from an optional YAML file, then overrides it
// with CONTRACTSORT_ environment variables, then fills defaults.
//
//	CONTRACTSORT_PROCESSING_WORKERS -> processing.workers
//	CONTRACTSORT_LOG_LEVEL          -> log.level
func LoadApp(path string) (*App, error) {
	k := koanf.New(".")

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("%w: config file %s exceeds %d bytes", internalerr.ErrInvalidConfig, path, maxConfigFileSize)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	var cfg App
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps CONTRACTSORT_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// Default returns the configuration used when no file or overrides are given.
func Default() *App {
	var cfg App
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *App) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Processing.Workers == 0 {
		cfg.Processing.Workers = 4
	}
	if cfg.Processing.NamingFormat == "" {
		cfg.Processing.NamingFormat = NamingEnhanced
	}
	if cfg.Processing.MaxTextChars == 0 {
		cfg.Processing.MaxTextChars = 50000
	}
	if cfg.Processing.MatchThreshold == 0 {
		cfg.Processing.MatchThreshold = 80
	}
	if cfg.Processing.YearThreshold == 0 {
		cfg.Processing.YearThreshold = 2017
	}
	if cfg.Registry.Filename == "" {
		cfg.Registry.Filename = "_backend_tracking_registry.json"
	}
	if cfg.Registry.Journal == "" {
		cfg.Registry.Journal = JournalNone
	}
}

// Validate checks ranges and enumerations.
func (c *App) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", internalerr.ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", internalerr.ErrInvalidConfig, c.Log.Format)
	}
	if c.Processing.Workers < 1 {
		return fmt.Errorf("%w: processing.workers must be positive", internalerr.ErrInvalidConfig)
	}
	if c.Processing.NamingFormat != NamingEnhanced && c.Processing.NamingFormat != NamingSimple {
		return fmt.Errorf("%w: processing.naming_format %q", internalerr.ErrInvalidConfig, c.Processing.NamingFormat)
	}
	if c.Processing.MaxTextChars < 0 {
		return fmt.Errorf("%w: processing.max_text_chars must not be negative", internalerr.ErrInvalidConfig)
	}
	if c.Processing.MatchThreshold < 0 || c.Processing.MatchThreshold > 100 {
		return fmt.Errorf("%w: processing.match_threshold must be within 0..100", internalerr.ErrInvalidConfig)
	}
	switch c.Registry.Journal {
	case JournalNone, JournalMemory:
	case JournalSQLite:
		if c.Registry.JournalPath == "" {
			return fmt.Errorf("%w: registry.journal_path required for sqlite journal", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: registry.journal %q", internalerr.ErrInvalidConfig, c.Registry.Journal)
	}
	return nil
}
