// Package config loads, normalizes, and validates wavebench configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Workspace contains directory configuration.
type Workspace struct {
	// Dir is the catalog directory holding payload files and the manifest.
	Dir string `toml:"dir"`
	// LogDir receives the wavebench log file; empty disables file logging.
	LogDir string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Subtract carries default parameters for the background subtraction
// operator; command-line flags override them per invocation.
type Subtract struct {
	MatchMode            string  `toml:"match_mode"`
	MissingChannelPolicy string  `toml:"missing_channel_policy"`
	BgScale              float64 `toml:"bg_scale"`
	ExpScale             float64 `toml:"exp_scale"`
	TimeAlign            string  `toml:"time_align"`
	StoreOriginal        bool    `toml:"store_original"`
	RecordHistory        bool    `toml:"record_history"`
}

// Detect carries default parameters for the peak detection operator.
type Detect struct {
	Polarity           string  `toml:"polarity"`
	NoiseMethod        string  `toml:"noise_method"`
	ThresholdSigma     float64 `toml:"threshold_sigma"`
	MinDistanceSamples int     `toml:"min_distance_samples"`
	MinWidthSamples    int     `toml:"min_width_samples"`
	StoreRegions       bool    `toml:"store_regions"`
	StoreSNR           bool    `toml:"store_snr"`
}

// Config encapsulates all configuration values for wavebench.
type Config struct {
	Workspace Workspace `toml:"workspace"`
	Logging   Logging   `toml:"logging"`
	Subtract  Subtract  `toml:"subtract"`
	Detect    Detect    `toml:"detect"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/wavebench/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ prefixes and relative segments to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. An empty path
// checks the default location and falls back to defaults when no file
// exists. The returned config has all path fields expanded.
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

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the workspace directories so stores can open.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Workspace.Dir, 0o755); err != nil {
		return fmt.Errorf("ensure workspace dir: %w", err)
	}
	if c.Workspace.LogDir != "" {
		if err := os.MkdirAll(c.Workspace.LogDir, 0o755); err != nil {
			return fmt.Errorf("ensure log dir: %w", err)
		}
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
