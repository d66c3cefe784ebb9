package journal

import "time"

// Action verbs recorded per file operation.
const (
	VerbMove       = "move"
	VerbDelete     = "delete"
	VerbQuarantine = "quarantine"
)

// Run describes one pipeline invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	SourceDir  string
	OutputDir  string
	Mode       string
	Policy     string
	Counters   Counters
}

// Finished reports whether the run recorded its final counters.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// Counters are the per-run totals shown in the summary and stored on the run
// row once it finishes.
type Counters struct {
	Scanned     int
	Groups      int
	Duplicates  int
	Organized   int
	Skipped     int
	Deleted     int
	Quarantined int
	Warnings    int
}

// Action is one journaled file operation.
type Action struct {
	ID          int64
	RunID       string
	Verb        string
	SourcePath  string
	DestPath    string
	Fingerprint string
	CreatedAt   time.Time
}
