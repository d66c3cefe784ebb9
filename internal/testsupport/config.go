// Package testsupport provides shared helpers for constructing test
// configurations and fixture files.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"snapsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The source directory exists; output and quarantine are created on demand by
// the code under test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "source")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.QuarantineDir = ""
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source dir: %v", err)
	}
	return &cfg
}

// WithMode sets the duplicate detection mode on the test config.
func WithMode(mode string) ConfigOption {
	return func(c *config.Config) {
		c.Detector.Mode = mode
	}
}

// WithPolicy sets the duplicate policy on the test config.
func WithPolicy(policy string) ConfigOption {
	return func(c *config.Config) {
		c.Organizer.OnDuplicate = policy
	}
}

// WithFastDigest enables partial-content digests on the test config.
func WithFastDigest() ConfigOption {
	return func(c *config.Config) {
		c.Detector.FastDigest = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceDir)
}
