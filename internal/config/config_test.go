package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snapsort/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Detector.Mode != config.ModeExact {
		t.Fatalf("expected default mode %q, got %q", config.ModeExact, cfg.Detector.Mode)
	}
	if cfg.Organizer.OnDuplicate != config.PolicyQuarantine {
		t.Fatalf("expected default policy %q, got %q", config.PolicyQuarantine, cfg.Organizer.OnDuplicate)
	}
}

func TestLoadReadsTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
source_dir = "` + filepath.Join(dir, "in") + `"
output_dir = "` + filepath.Join(dir, "out") + `"

[detector]
mode = "perceptual"
distance_threshold = 6

[organizer]
on_duplicate = "delete"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as found")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Detector.Mode != config.ModePerceptual {
		t.Fatalf("mode = %q, want perceptual", cfg.Detector.Mode)
	}
	if cfg.Detector.DistanceThreshold != 6 {
		t.Fatalf("threshold = %d, want 6", cfg.Detector.DistanceThreshold)
	}
	if cfg.Organizer.OnDuplicate != config.PolicyDelete {
		t.Fatalf("policy = %q, want delete", cfg.Organizer.OnDuplicate)
	}
	if cfg.Paths.QuarantineDir != filepath.Join(cfg.Paths.OutputDir, "_duplicates") {
		t.Fatalf("quarantine dir = %q, expected default under output", cfg.Paths.QuarantineDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to be reported as absent")
	}
	if cfg.Organizer.FolderLayout != "2006/01" {
		t.Fatalf("layout = %q, want default", cfg.Organizer.FolderLayout)
	}
}

func TestLoadKeepsExplicitZeroThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[detector]
mode = "perceptual"
distance_threshold = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Zero means exact-hash-match only, not "use the default".
	if cfg.Detector.DistanceThreshold != 0 {
		t.Fatalf("distance_threshold = %d, want 0", cfg.Detector.DistanceThreshold)
	}
}

func TestLoadDefaultsAbsentThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[detector]
mode = "perceptual"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Detector.DistanceThreshold != 10 {
		t.Fatalf("distance_threshold = %d, want default 10", cfg.Detector.DistanceThreshold)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := config.Default()
	cfg.Detector.Mode = "fuzzy"
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "detector.mode") {
		t.Fatalf("expected detector.mode error, got %v", err)
	}
}

func TestValidateRejectsLayoutWithoutMonth(t *testing.T) {
	cfg := config.Default()
	cfg.Organizer.FolderLayout = "2006"
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected year-only layout to be rejected")
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.Detector.DistanceThreshold = 80
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected out-of-range threshold to be rejected")
	}
}

func TestExtensionSetNormalizesEntries(t *testing.T) {
	cfg := config.Default()
	cfg.Scanner.Extensions = []string{"JPG", ".Png", " heic "}
	set := cfg.ExtensionSet()
	for _, want := range []string{".jpg", ".png", ".heic"} {
		if _, ok := set[want]; !ok {
			t.Fatalf("expected %q in extension set %v", want, set)
		}
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[detector]") {
		t.Fatal("sample config missing [detector] section")
	}
}
