package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if info.FileFound || info.PortSpecified {
		t.Fatalf("info=%+v", info)
	}
	if cfg.Matching.FacilityThreshold != 0.5 || cfg.Matching.TypoSimilarity != 85 || cfg.Import.Workers != 4 {
		t.Fatalf("defaults=%+v", cfg)
	}
}

func TestLoadFile_OverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 8080

[matching]
strict_ambiguity = false
ambiguity_margin = 0.05

[import]
workers = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SYSTEMSCHECK_STRICT_AMBIGUITY", "true")
	t.Setenv("SYSTEMSCHECK_LOG_LEVEL", "DEBUG")
	t.Setenv("SYSTEMSCHECK_DATA_DIR", "/var/lib/systemscheck")

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !info.FileFound || !info.PortSpecified || cfg.Server.Port != 8080 {
		t.Fatalf("info=%+v port=%d", info, cfg.Server.Port)
	}
	if !cfg.Matching.StrictAmbiguity || cfg.Matching.AmbiguityMargin != 0.05 {
		t.Fatalf("matching=%+v", cfg.Matching)
	}
	if cfg.Import.Workers != 8 || cfg.Import.TotalTolerance != 0.1 {
		t.Fatalf("import=%+v", cfg.Import)
	}
	if cfg.Log.Level != "debug" || ResolveDataDir(cfg) != "/var/lib/systemscheck" {
		t.Fatalf("log=%s data=%s", cfg.Log.Level, ResolveDataDir(cfg))
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[import]\nworkers = 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "Workers") {
		t.Fatalf("err=%v, want Workers validation error", err)
	}

	t.Setenv("SYSTEMSCHECK_STRICT_AMBIGUITY", "maybe")
	if _, _, err := LoadFile(filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatalf("expected env parse error")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Matching.TypoSimilarity = 90
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, _, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Matching.TypoSimilarity != 90 {
		t.Fatalf("typo=%d", got.Matching.TypoSimilarity)
	}
}

func TestEnsureDataDir_CreatesOnlyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "nested", "data")
	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("data dir has %d entries, want none", len(entries))
	}
}

func TestLoadFile_ZeroToleranceKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[import]\ntotal_tolerance = 0.0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Import.TotalTolerance != 0 {
		t.Fatalf("tolerance=%v want 0", cfg.Import.TotalTolerance)
	}
}
