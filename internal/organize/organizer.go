package organize

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"snapsort/internal/config"
	"snapsort/internal/dedupe"
	"snapsort/internal/faults"
	"snapsort/internal/fileutil"
	"snapsort/internal/fingerprint"
	"snapsort/internal/logging"
	"snapsort/internal/scan"
)

// Op identifies what happened (or would happen, in dry-run) to a file.
type Op string

const (
	// OpMove files the keeper into its timeline destination.
	OpMove Op = "move"
	// OpSkip means the keeper already sits at its destination.
	OpSkip Op = "skip"
	// OpDelete removes a non-keeper under the delete policy.
	OpDelete Op = "delete"
	// OpQuarantine relocates a non-keeper under the quarantine policy.
	OpQuarantine Op = "quarantine"
)

// FileOp is one resolved file operation.
type FileOp struct {
	Op          Op
	Source      string
	Dest        string
	Fingerprint fingerprint.Fingerprint
}

// Warning is a per-file failure that did not stop the run.
type Warning struct {
	Path string
	Err  error
}

// Result collects what Apply did for one group.
type Result struct {
	Ops      []FileOp
	Warnings []Warning
}

// maxSuffixAttempts bounds conflict suffixing per destination name.
const maxSuffixAttempts = 10000

// Organizer executes the filing plan for duplicate groups.
type Organizer struct {
	cfg      *config.Config
	computer *fingerprint.Computer
	logger   *slog.Logger
	dryRun   bool
}

// New constructs an organizer. The fingerprint computer is used to compare
// occupied destinations against incoming keepers.
func New(cfg *config.Config, computer *fingerprint.Computer, logger *slog.Logger, dryRun bool) *Organizer {
	return &Organizer{
		cfg:      cfg,
		computer: computer,
		logger:   logging.NewComponentLogger(logger, "organizer"),
		dryRun:   dryRun,
	}
}

// Apply files the group's keeper and applies the duplicate policy to the
// rest. Per-file failures become warnings; the group is never abandoned
// halfway on a single bad file.
func (o *Organizer) Apply(ctx context.Context, group dedupe.Group) Result {
	logger := logging.WithContext(ctx, o.logger)
	result := Result{}

	o.placeKeeper(logger, group.Keeper, &result)
	for _, dup := range group.Duplicates {
		o.applyPolicy(logger, dup, &result)
	}
	return result
}

func (o *Organizer) placeKeeper(logger *slog.Logger, keeper dedupe.Entry, result *Result) {
	destDir := destinationDir(o.cfg.Paths.OutputDir, o.cfg.Organizer.FolderLayout, keeper.Record.CaptureTime)
	name := normalizeName(filepath.Base(keeper.Record.Path))

	dest, op, err := o.resolveDestination(keeper, destDir, name)
	if err != nil {
		result.warn(keeper.Record.Path, err)
		logger.Warn("failed to resolve destination",
			logging.String(logging.FieldPath, keeper.Record.Path),
			logging.Error(err),
		)
		return
	}

	switch op {
	case OpSkip:
		logger.Debug("keeper already organized", logging.String(logging.FieldPath, keeper.Record.Path))
		result.record(FileOp{Op: OpSkip, Source: keeper.Record.Path, Dest: dest, Fingerprint: keeper.Fingerprint})
	case OpMove:
		if o.dryRun {
			logger.Info("would move keeper",
				logging.String(logging.FieldPath, keeper.Record.Path),
				logging.String("dest", dest),
			)
			result.record(FileOp{Op: OpMove, Source: keeper.Record.Path, Dest: dest, Fingerprint: keeper.Fingerprint})
			return
		}
		if err := fileutil.MoveFile(keeper.Record.Path, dest); err != nil {
			wrapped := faults.Wrap(faults.ErrWriteFailure, "organize", "move keeper", keeper.Record.Path, err)
			result.warn(keeper.Record.Path, wrapped)
			logger.Warn("keeper move failed",
				logging.String(logging.FieldPath, keeper.Record.Path),
				logging.Error(err),
			)
			return
		}
		logger.Info("organized keeper",
			logging.String(logging.FieldPath, keeper.Record.Path),
			logging.String("dest", dest),
			logging.String("capture_source", keeper.Record.CaptureSource),
		)
		result.record(FileOp{Op: OpMove, Source: keeper.Record.Path, Dest: dest, Fingerprint: keeper.Fingerprint})
	default:
		// Destination already holds identical content elsewhere in the
		// tree; the incoming keeper is redundant.
		o.applyPolicy(logger, keeper, result)
	}
}

// resolveDestination walks suffix candidates until it finds the keeper's slot.
// Returns OpSkip when the keeper already occupies the slot, OpMove with a free
// path, or an empty op when identical content already occupies the slot.
func (o *Organizer) resolveDestination(keeper dedupe.Entry, destDir, name string) (string, Op, error) {
	candidate := filepath.Join(destDir, name)
	for attempt := 1; attempt <= maxSuffixAttempts; attempt++ {
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return candidate, OpMove, nil
			}
			return "", "", faults.Wrap(faults.ErrWriteFailure, "organize", "stat destination", candidate, err)
		}

		if keeper.Record.Path == candidate {
			return candidate, OpSkip, nil
		}

		occupantFP, err := o.computer.Compute(scan.Record{Path: candidate, Size: info.Size(), ModTime: info.ModTime()})
		if err == nil && occupantFP.Equal(keeper.Fingerprint) {
			return candidate, "", nil
		}

		// Different content owns this name: deterministic suffix, retry.
		candidate = filepath.Join(destDir, suffixedName(name, attempt))
	}
	return "", "", faults.Wrap(faults.ErrDestinationConflict, "organize", "resolve destination",
		"exhausted suffix slots for "+name, nil)
}

func (o *Organizer) applyPolicy(logger *slog.Logger, entry dedupe.Entry, result *Result) {
	if o.cfg.Organizer.OnDuplicate == config.PolicyDelete {
		if o.dryRun {
			logger.Info("would delete duplicate",
				logging.String(logging.FieldPath, entry.Record.Path),
				logging.String(logging.FieldFingerprint, entry.Fingerprint.String()),
			)
			result.record(FileOp{Op: OpDelete, Source: entry.Record.Path, Fingerprint: entry.Fingerprint})
			return
		}
		if err := os.Remove(entry.Record.Path); err != nil {
			wrapped := faults.Wrap(faults.ErrWriteFailure, "organize", "delete duplicate", entry.Record.Path, err)
			result.warn(entry.Record.Path, wrapped)
			logger.Warn("duplicate delete failed",
				logging.String(logging.FieldPath, entry.Record.Path),
				logging.Error(err),
			)
			return
		}
		logger.Info("deleted duplicate",
			logging.String(logging.FieldPath, entry.Record.Path),
			logging.String(logging.FieldFingerprint, entry.Fingerprint.String()),
		)
		result.record(FileOp{Op: OpDelete, Source: entry.Record.Path, Fingerprint: entry.Fingerprint})
		return
	}

	dest, err := o.quarantineSlot(filepath.Base(entry.Record.Path))
	if err != nil {
		result.warn(entry.Record.Path, err)
		return
	}
	if o.dryRun {
		logger.Info("would quarantine duplicate",
			logging.String(logging.FieldPath, entry.Record.Path),
			logging.String("dest", dest),
			logging.String(logging.FieldFingerprint, entry.Fingerprint.String()),
		)
		result.record(FileOp{Op: OpQuarantine, Source: entry.Record.Path, Dest: dest, Fingerprint: entry.Fingerprint})
		return
	}
	if err := fileutil.MoveFile(entry.Record.Path, dest); err != nil {
		wrapped := faults.Wrap(faults.ErrWriteFailure, "organize", "quarantine duplicate", entry.Record.Path, err)
		result.warn(entry.Record.Path, wrapped)
		logger.Warn("duplicate quarantine failed",
			logging.String(logging.FieldPath, entry.Record.Path),
			logging.Error(err),
		)
		return
	}
	logger.Info("quarantined duplicate",
		logging.String(logging.FieldPath, entry.Record.Path),
		logging.String("dest", dest),
		logging.String(logging.FieldFingerprint, entry.Fingerprint.String()),
	)
	result.record(FileOp{Op: OpQuarantine, Source: entry.Record.Path, Dest: dest, Fingerprint: entry.Fingerprint})
}

func (o *Organizer) quarantineSlot(name string) (string, error) {
	name = normalizeName(name)
	candidate := filepath.Join(o.cfg.Paths.QuarantineDir, name)
	for attempt := 1; attempt <= maxSuffixAttempts; attempt++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", faults.Wrap(faults.ErrWriteFailure, "organize", "stat quarantine slot", candidate, err)
		}
		candidate = filepath.Join(o.cfg.Paths.QuarantineDir, suffixedName(name, attempt))
	}
	return "", faults.Wrap(faults.ErrDestinationConflict, "organize", "resolve quarantine slot",
		"exhausted suffix slots for "+name, nil)
}

func (r *Result) record(op FileOp) {
	r.Ops = append(r.Ops, op)
}

func (r *Result) warn(path string, err error) {
	r.Warnings = append(r.Warnings, Warning{Path: path, Err: err})
}
