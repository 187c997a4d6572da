package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wavebench/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("exists = true for a missing file")
	}
	if resolved == "" {
		t.Fatal("expected the resolved path to be reported")
	}
	if cfg.Detect.ThresholdSigma != 5.0 {
		t.Fatalf("threshold_sigma = %v, want default 5.0", cfg.Detect.ThresholdSigma)
	}
	if cfg.Subtract.MatchMode != "by_key" {
		t.Fatalf("match_mode = %q, want default by_key", cfg.Subtract.MatchMode)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[workspace]
dir = "` + filepath.Join(dir, "ws") + `"
log_dir = ""

[logging]
format = "JSON"
level = "DEBUG"

[detect]
threshold_sigma = 8.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.Detect.ThresholdSigma != 8.5 {
		t.Fatalf("threshold_sigma = %v, want 8.5", cfg.Detect.ThresholdSigma)
	}
	// Untouched sections keep their defaults.
	if cfg.Detect.MinDistanceSamples != 20 {
		t.Fatalf("min_distance_samples = %d, want default 20", cfg.Detect.MinDistanceSamples)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"bad format", "[logging]\nformat = \"xml\"\n"},
		{"bad match mode", "[subtract]\nmatch_mode = \"fuzzy\"\n"},
		{"bad polarity", "[detect]\npolarity = \"sideways\"\n"},
		{"bad noise method", "[detect]\nnoise_method = \"guess\"\n"},
		{"zero threshold", "[detect]\nthreshold_sigma = 0.0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("sample config not detected")
	}

	defaults := config.Default()
	if cfg.Detect != defaults.Detect {
		t.Fatalf("sample detect section %+v differs from defaults %+v", cfg.Detect, defaults.Detect)
	}
	if cfg.Subtract != defaults.Subtract {
		t.Fatalf("sample subtract section %+v differs from defaults %+v", cfg.Subtract, defaults.Subtract)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Workspace.Dir = filepath.Join(base, "ws")
	cfg.Workspace.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Workspace.Dir, cfg.Workspace.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s missing: %v", dir, err)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got, err := config.ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("ExpandPath(~/x) = %q", got)
	}

	abs, err := config.ExpandPath("rel/path")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if !strings.HasPrefix(abs, string(os.PathSeparator)) {
		t.Fatalf("ExpandPath(rel/path) = %q, want absolute", abs)
	}
}
