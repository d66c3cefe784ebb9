package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Normalize expands paths and fills defaulted fields after decoding and flag
// overrides have been applied.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScanner()
	c.normalizeDetector()
	c.normalizeOrganizer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SourceDir) != "" {
		if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
			return fmt.Errorf("paths.source_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.QuarantineDir) == "" {
		c.Paths.QuarantineDir = filepath.Join(c.Paths.OutputDir, defaultQuarantineSubdir)
	}
	if c.Paths.QuarantineDir, err = expandPath(c.Paths.QuarantineDir); err != nil {
		return fmt.Errorf("paths.quarantine_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScanner() {
	if len(c.Scanner.Extensions) == 0 {
		c.Scanner.Extensions = defaultExtensions()
	}
	if len(c.Scanner.SkipNames) == 0 {
		c.Scanner.SkipNames = defaultSkipNames()
	}
}

// normalizeDetector leaves DistanceThreshold alone: zero is a valid
// configured value (exact perceptual match only), and the decoder starts
// from Default(), so an absent key already carries the default.
func (c *Config) normalizeDetector() {
	c.Detector.Mode = strings.ToLower(strings.TrimSpace(c.Detector.Mode))
	if c.Detector.Mode == "" {
		c.Detector.Mode = defaultMode
	}
}

func (c *Config) normalizeOrganizer() {
	c.Organizer.OnDuplicate = strings.ToLower(strings.TrimSpace(c.Organizer.OnDuplicate))
	if c.Organizer.OnDuplicate == "" {
		c.Organizer.OnDuplicate = defaultOnDuplicate
	}
	c.Organizer.FolderLayout = strings.Trim(strings.TrimSpace(c.Organizer.FolderLayout), "/")
	if c.Organizer.FolderLayout == "" {
		c.Organizer.FolderLayout = defaultFolderLayout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
