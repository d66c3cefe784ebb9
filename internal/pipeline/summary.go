package pipeline

import (
	"time"

	"snapsort/internal/journal"
)

// Warning is a per-file problem surfaced to the user at the end of a run.
type Warning struct {
	Path string
	Err  error
}

// Summary reports what a run did.
type Summary struct {
	RunID    string
	DryRun   bool
	Mode     string
	Policy   string
	Counters journal.Counters
	Warnings []Warning
	Elapsed  time.Duration
}

func (s *Summary) warn(path string, err error) {
	s.Warnings = append(s.Warnings, Warning{Path: path, Err: err})
	s.Counters.Warnings++
}
