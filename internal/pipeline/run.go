package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"snapsort/internal/config"
	"snapsort/internal/dedupe"
	"snapsort/internal/faults"
	"snapsort/internal/fingerprint"
	"snapsort/internal/journal"
	"snapsort/internal/logging"
	"snapsort/internal/metadata"
	"snapsort/internal/organize"
	"snapsort/internal/runlock"
	"snapsort/internal/scan"
)

// Runner executes one organization run end to end.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	dryRun bool
}

// New constructs a runner.
func New(cfg *config.Config, logger *slog.Logger, dryRun bool) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		dryRun: dryRun,
	}
}

// Run executes the pipeline and returns its summary. Only fatal conditions
// produce an error: a concurrent run, a missing source root, or a journal
// that cannot be opened. Per-file problems accumulate as summary warnings.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	lock, err := runlock.Acquire(r.cfg)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	// An unwritable output root would turn every move into a warning and
	// organize nothing; fail the whole run instead. Dry runs never write,
	// so they skip the check to stay mutation-free.
	if !r.dryRun {
		if err := checkOutputWritable(r.cfg.Paths.OutputDir); err != nil {
			return nil, err
		}
	}

	var jnl *journal.Journal
	runID := journal.NewRunID()
	if !r.dryRun {
		jnl, err = journal.Open(r.cfg)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		defer jnl.Close()

		runID, err = jnl.BeginRun(ctx, journal.Run{
			ID:        runID,
			StartedAt: start.UTC(),
			SourceDir: r.cfg.Paths.SourceDir,
			OutputDir: r.cfg.Paths.OutputDir,
			Mode:      r.cfg.Detector.Mode,
			Policy:    r.cfg.Organizer.OnDuplicate,
		})
		if err != nil {
			return nil, fmt.Errorf("begin run: %w", err)
		}
	}

	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String("source", r.cfg.Paths.SourceDir),
		logging.String("output", r.cfg.Paths.OutputDir),
		logging.String("mode", r.cfg.Detector.Mode),
		logging.String("policy", r.cfg.Organizer.OnDuplicate),
		logging.Bool("dry_run", r.dryRun),
	)

	summary := &Summary{RunID: runID, DryRun: r.dryRun, Mode: r.cfg.Detector.Mode, Policy: r.cfg.Organizer.OnDuplicate}

	scanner := scan.New(r.cfg, r.logger)
	scanned, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	summary.Counters.Scanned = len(scanned.Records)
	for _, w := range scanned.Warnings {
		summary.warn(w.Path, w.Err)
	}

	entries := r.fingerprintRecords(ctx, scanned.Records, summary)
	groups := dedupe.Groups(entries, r.cfg)
	for _, group := range groups {
		if group.Size() > 1 {
			summary.Counters.Groups++
			summary.Counters.Duplicates += len(group.Duplicates)
		}
	}

	organizer := organize.New(r.cfg, fingerprint.NewComputer(r.cfg, r.logger), r.logger, r.dryRun)
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := organizer.Apply(ctx, group)
		for _, w := range result.Warnings {
			summary.warn(w.Path, w.Err)
		}
		for _, op := range result.Ops {
			r.tally(ctx, jnl, runID, op, summary)
		}
	}

	summary.Elapsed = time.Since(start)
	if jnl != nil {
		if err := jnl.FinishRun(ctx, runID, summary.Counters); err != nil {
			logger.Warn("failed to finalize journal entry", logging.Error(err))
		}
	}

	logger.Info("run finished",
		logging.Int("scanned", summary.Counters.Scanned),
		logging.Int("groups", summary.Counters.Groups),
		logging.Int("organized", summary.Counters.Organized),
		logging.Int("deleted", summary.Counters.Deleted),
		logging.Int("quarantined", summary.Counters.Quarantined),
		logging.Int("warnings", summary.Counters.Warnings),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// checkOutputWritable verifies the output root accepts writes by creating
// and removing a temporary file in it. Per-file failures later in the run
// stay warnings; a root that rejects writes outright is fatal.
func checkOutputWritable(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return faults.Wrap(faults.ErrWriteFailure, "pipeline", "create output root", root, err)
	}
	file, err := os.CreateTemp(root, ".snapsort-write-check-*")
	if err != nil {
		return faults.Wrap(faults.ErrWriteFailure, "pipeline", "check output root", root+" is not writable", err)
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		return faults.Wrap(faults.ErrWriteFailure, "pipeline", "check output root", name, err)
	}
	if err := os.Remove(name); err != nil {
		return faults.Wrap(faults.ErrWriteFailure, "pipeline", "check output root", name, err)
	}
	return nil
}

// fingerprintRecords resolves capture times and computes fingerprints.
// Unreadable files drop out with a warning instead of failing the run.
func (r *Runner) fingerprintRecords(ctx context.Context, records []scan.Record, summary *Summary) []dedupe.Entry {
	computer := fingerprint.NewComputer(r.cfg, r.logger)
	logger := logging.WithContext(ctx, r.logger)

	entries := make([]dedupe.Entry, 0, len(records))
	for i := range records {
		rec := records[i]
		metadata.Resolve(&rec)

		fp, err := computer.Compute(rec)
		if err != nil {
			if errors.Is(err, faults.ErrUnreadableFile) {
				summary.warn(rec.Path, err)
				logger.Warn("skipping unreadable file",
					logging.String(logging.FieldPath, rec.Path),
					logging.Error(err),
				)
				continue
			}
			summary.warn(rec.Path, err)
			logger.Warn("fingerprint failed",
				logging.String(logging.FieldPath, rec.Path),
				logging.Error(err),
			)
			continue
		}
		entries = append(entries, dedupe.Entry{Record: rec, Fingerprint: fp})
	}
	return entries
}

// tally folds one file operation into the counters and, outside dry runs,
// the journal. Skips are counted but not journaled; they changed nothing.
func (r *Runner) tally(ctx context.Context, jnl *journal.Journal, runID string, op organize.FileOp, summary *Summary) {
	verb := ""
	switch op.Op {
	case organize.OpMove:
		summary.Counters.Organized++
		verb = journal.VerbMove
	case organize.OpSkip:
		summary.Counters.Skipped++
	case organize.OpDelete:
		summary.Counters.Deleted++
		verb = journal.VerbDelete
	case organize.OpQuarantine:
		summary.Counters.Quarantined++
		verb = journal.VerbQuarantine
	}
	if jnl == nil || verb == "" {
		return
	}

	err := jnl.RecordAction(ctx, runID, journal.Action{
		Verb:        verb,
		SourcePath:  op.Source,
		DestPath:    op.Dest,
		Fingerprint: op.Fingerprint.String(),
	})
	if err != nil {
		logging.WithContext(ctx, r.logger).Warn("failed to journal action",
			logging.String(logging.FieldPath, op.Source),
			logging.Error(err),
		)
	}
}
