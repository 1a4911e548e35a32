// Package config loads the voxtrack configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Import contains converter settings.
type Import struct {
	IgnoreDOP bool   `toml:"ignore_dop"`
	Encoding  string `toml:"encoding"`
}

// Export contains bundle output settings.
type Export struct {
	Format     string `toml:"format"`
	FIT        bool   `toml:"fit"`
	CopySource bool   `toml:"copy_source"`
}

// Report controls what the CLI prints after a conversion.
type Report struct {
	ShowSummary          bool `toml:"show_summary"`
	WarnConversionErrors bool `toml:"warn_conversion_errors"`
	WarnMissingAudio     bool `toml:"warn_missing_audio"`
}

// Logging contains log output settings.
type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates all configuration values for voxtrack.
type Config struct {
	Import  Import  `toml:"import"`
	Export  Export  `toml:"export"`
	Report  Report  `toml:"report"`
	Logging Logging `toml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Export: Export{Format: "parquet"},
		Report: Report{
			ShowSummary:          true,
			WarnConversionErrors: true,
			WarnMissingAudio:     true,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load locates, parses and validates a configuration file. An absent
// file is not an error, the defaults apply. The returned path is the
// file that was read, or the one that would have been.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return abs, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return abs, true, nil
	}

	projectPath, err := filepath.Abs("voxtrack.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	userDir, err := os.UserConfigDir()
	if err != nil {
		return projectPath, false, nil
	}
	userPath := filepath.Join(userDir, "voxtrack", "config.toml")
	if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
		return userPath, true, nil
	}

	return userPath, false, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Export.Format)) {
	case "parquet", "csv":
	default:
		return fmt.Errorf("export.format must be parquet or csv, got %q", c.Export.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Import.Encoding)) {
	case "", "utf-8", "utf8", "latin1", "iso-8859-1", "windows-1252", "cp1252":
	default:
		return fmt.Errorf("import.encoding %q is not supported", c.Import.Encoding)
	}
	return nil
}

// SlogLevel maps the configured level onto slog.
func (l Logging) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
