package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// layoutProbe is an arbitrary timestamp with distinct year/month/day digits,
// used to verify that a folder layout round-trips through time.Parse.
var layoutProbe = time.Date(2023, time.July, 14, 10, 15, 30, 0, time.UTC)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validateOrganizer(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetector() error {
	switch c.Detector.Mode {
	case ModeExact, ModePerceptual:
	default:
		return fmt.Errorf("detector.mode must be %q or %q, got %q", ModeExact, ModePerceptual, c.Detector.Mode)
	}
	if c.Detector.DistanceThreshold < 0 || c.Detector.DistanceThreshold > 64 {
		return errors.New("detector.distance_threshold must be between 0 and 64")
	}
	return nil
}

func (c *Config) validateOrganizer() error {
	switch c.Organizer.OnDuplicate {
	case PolicyQuarantine, PolicyDelete:
	default:
		return fmt.Errorf("organizer.on_duplicate must be %q or %q, got %q", PolicyQuarantine, PolicyDelete, c.Organizer.OnDuplicate)
	}
	return c.validateFolderLayout()
}

// validateFolderLayout requires the layout to preserve year and month so the
// timestamp-to-folder mapping stays an invertible pure function.
func (c *Config) validateFolderLayout() error {
	layout := c.Organizer.FolderLayout
	rendered := layoutProbe.Format(layout)
	parsed, err := time.Parse(layout, rendered)
	if err != nil {
		return fmt.Errorf("organizer.folder_layout %q is not a valid time layout: %w", layout, err)
	}
	if parsed.Year() != layoutProbe.Year() || parsed.Month() != layoutProbe.Month() {
		return fmt.Errorf("organizer.folder_layout %q must include year and month", layout)
	}
	return nil
}

func (c *Config) validateScanner() error {
	if len(c.Scanner.Extensions) == 0 {
		return errors.New("scanner.extensions must list at least one extension")
	}
	for _, ext := range c.Scanner.Extensions {
		if strings.TrimSpace(ext) == "" {
			return errors.New("scanner.extensions must not contain empty entries")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}
