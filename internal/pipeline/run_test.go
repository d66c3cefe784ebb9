package pipeline_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"snapsort/internal/config"
	"snapsort/internal/faults"
	"snapsort/internal/journal"
	"snapsort/internal/logging"
	"snapsort/internal/pipeline"
	"snapsort/internal/runlock"
	"snapsort/internal/testsupport"
)

var july = time.Date(2023, time.July, 14, 10, 30, 0, 0, time.UTC)

func runPipeline(t *testing.T, cfg *config.Config, dryRun bool) *pipeline.Summary {
	t.Helper()

	runner := pipeline.New(cfg, logging.NewNop(), dryRun)
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return summary
}

func TestRunOrganizesAndDeletesDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPolicy(config.PolicyDelete))

	// a.jpg carries the earlier timestamp, so it wins keeper selection.
	same := []byte("duplicate content")
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), same, july.Add(-time.Hour))
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "b.jpg"), same, july)
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "c.jpg"), []byte("unique content"), july)

	summary := runPipeline(t, cfg, false)

	if summary.Counters.Scanned != 3 {
		t.Fatalf("scanned = %d, want 3", summary.Counters.Scanned)
	}
	if summary.Counters.Groups != 1 || summary.Counters.Duplicates != 1 {
		t.Fatalf("groups = %d, duplicates = %d, want 1 and 1", summary.Counters.Groups, summary.Counters.Duplicates)
	}
	if summary.Counters.Organized != 2 || summary.Counters.Deleted != 1 {
		t.Fatalf("organized = %d, deleted = %d, want 2 and 1", summary.Counters.Organized, summary.Counters.Deleted)
	}
	if summary.Counters.Warnings != 0 {
		t.Fatalf("unexpected warnings: %v", summary.Warnings)
	}

	monthDir := filepath.Join(cfg.Paths.OutputDir, "2023", "07")
	for _, name := range []string{"a.jpg", "c.jpg"} {
		if _, err := os.Stat(filepath.Join(monthDir, name)); err != nil {
			t.Errorf("%s not organized: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.SourceDir, "b.jpg")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("duplicate b.jpg should be deleted, stat err = %v", err)
	}
}

func TestRunJournalsActions(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPolicy(config.PolicyDelete))

	same := []byte("journaled content")
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), same, july)
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "b.jpg"), same, july)

	summary := runPipeline(t, cfg, false)
	if summary.RunID == "" {
		t.Fatal("expected a run ID")
	}

	jnl, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer jnl.Close()

	run, err := jnl.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil {
		t.Fatal("run not journaled")
	}
	if !run.Finished() {
		t.Fatal("run not marked finished")
	}
	if run.Counters != summary.Counters {
		t.Fatalf("journaled counters = %+v, want %+v", run.Counters, summary.Counters)
	}

	actions, err := jnl.RunActions(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("RunActions: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 journaled actions, got %d", len(actions))
	}
	verbs := map[string]int{}
	for _, action := range actions {
		verbs[action.Verb]++
		if action.Fingerprint == "" {
			t.Errorf("action %d missing fingerprint", action.ID)
		}
	}
	if verbs[journal.VerbMove] != 1 || verbs[journal.VerbDelete] != 1 {
		t.Fatalf("verbs = %v, want one move and one delete", verbs)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPolicy(config.PolicyDelete), func(c *config.Config) {
		c.Paths.OutputDir = filepath.Join(c.Paths.SourceDir, "timeline")
		c.Paths.QuarantineDir = ""
	})

	same := []byte("rerun content")
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), same, july)
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "b.jpg"), same, july)

	first := runPipeline(t, cfg, false)
	if first.Counters.Organized != 1 || first.Counters.Deleted != 1 {
		t.Fatalf("first run counters = %+v", first.Counters)
	}

	second := runPipeline(t, cfg, false)
	if second.Counters.Organized != 0 || second.Counters.Deleted != 0 {
		t.Fatalf("second run mutated files: %+v", second.Counters)
	}
	if second.Counters.Skipped != 1 {
		t.Fatalf("second run skipped = %d, want 1", second.Counters.Skipped)
	}

	dest := filepath.Join(cfg.Paths.OutputDir, "2023", "07", "a.jpg")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("organized file missing after rerun: %v", err)
	}
}

func TestRunDryRunLeavesEverythingUntouched(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPolicy(config.PolicyDelete))

	same := []byte("dry run content")
	aPath := filepath.Join(cfg.Paths.SourceDir, "a.jpg")
	bPath := filepath.Join(cfg.Paths.SourceDir, "b.jpg")
	testsupport.WriteFileAt(t, aPath, same, july)
	testsupport.WriteFileAt(t, bPath, same, july)

	summary := runPipeline(t, cfg, true)
	if !summary.DryRun {
		t.Fatal("summary should be marked dry-run")
	}
	if summary.Counters.Organized != 1 || summary.Counters.Deleted != 1 {
		t.Fatalf("dry run should still plan ops, counters = %+v", summary.Counters)
	}

	for _, path := range []string{aPath, bPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("dry run mutated %s: %v", path, err)
		}
	}
	if _, err := os.Stat(cfg.Paths.OutputDir); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("dry run should not create the output dir, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, "journal.db")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("dry run should not write the journal, stat err = %v", err)
	}
}

func TestRunPerceptualModeGroupsEncodedVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithMode(config.ModePerceptual),
		testsupport.WithPolicy(config.PolicyQuarantine),
	)

	// Same picture, different encodings: byte digests differ, hashes match.
	testsupport.WritePNGAt(t, filepath.Join(cfg.Paths.SourceDir, "a.png"), 7, july)
	testsupport.WriteJPEG(t, filepath.Join(cfg.Paths.SourceDir, "b.jpg"), 7)
	if err := os.Chtimes(filepath.Join(cfg.Paths.SourceDir, "b.jpg"), july, july); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	summary := runPipeline(t, cfg, false)
	if summary.Counters.Groups != 1 || summary.Counters.Duplicates != 1 {
		t.Fatalf("groups = %d, duplicates = %d, want 1 and 1", summary.Counters.Groups, summary.Counters.Duplicates)
	}
	if summary.Counters.Quarantined != 1 {
		t.Fatalf("quarantined = %d, want 1", summary.Counters.Quarantined)
	}

	entries, err := os.ReadDir(cfg.Paths.QuarantineDir)
	if err != nil {
		t.Fatalf("read quarantine dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("quarantine holds %d entries, want 1", len(entries))
	}
}

func TestRunFailsOnUnwritableOutput(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not restrict root")
	}
	cfg := testsupport.NewConfig(t, testsupport.WithPolicy(config.PolicyDelete))

	same := []byte("never organized")
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), same, july)
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "b.jpg"), same, july)

	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o555); err != nil {
		t.Fatalf("mkdir output: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(cfg.Paths.OutputDir, 0o755) })

	runner := pipeline.New(cfg, logging.NewNop(), false)
	_, err := runner.Run(context.Background())
	if !errors.Is(err, faults.ErrWriteFailure) {
		t.Fatalf("expected fatal write failure for read-only output root, got %v", err)
	}

	// Nothing was moved or deleted.
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if _, err := os.Stat(filepath.Join(cfg.Paths.SourceDir, name)); err != nil {
			t.Fatalf("%s should be untouched: %v", name, err)
		}
	}
}

func TestRunContinuesAfterQuarantineFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPolicy(config.PolicyQuarantine))

	// A regular file squatting on the quarantine path makes every
	// quarantine move fail while keeper placement still works.
	testsupport.WriteFile(t, cfg.Paths.QuarantineDir, []byte("in the way"))

	same := []byte("quarantine blocked")
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), same, july)
	testsupport.WriteFileAt(t, filepath.Join(cfg.Paths.SourceDir, "b.jpg"), same, july)

	summary := runPipeline(t, cfg, false)

	if summary.Counters.Organized != 1 {
		t.Fatalf("organized = %d, want 1", summary.Counters.Organized)
	}
	if summary.Counters.Quarantined != 0 {
		t.Fatalf("quarantined = %d, want 0", summary.Counters.Quarantined)
	}
	if summary.Counters.Warnings != 1 || len(summary.Warnings) != 1 {
		t.Fatalf("warnings = %d (%v), want 1", summary.Counters.Warnings, summary.Warnings)
	}
	if !errors.Is(summary.Warnings[0].Err, faults.ErrWriteFailure) {
		t.Fatalf("warning should be a write failure, got %v", summary.Warnings[0].Err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "2023", "07", "a.jpg")); err != nil {
		t.Fatalf("keeper should still be organized: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.SourceDir, "b.jpg")); err != nil {
		t.Fatalf("unquarantinable duplicate should remain at its source: %v", err)
	}
}

func TestRunFailsOnMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.RemoveAll(cfg.Paths.SourceDir); err != nil {
		t.Fatalf("remove source: %v", err)
	}

	runner := pipeline.New(cfg, logging.NewNop(), false)
	_, err := runner.Run(context.Background())
	if !errors.Is(err, faults.ErrPathNotFound) {
		t.Fatalf("expected path-not-found, got %v", err)
	}
	if !faults.Fatal(err) {
		t.Fatalf("missing source should be fatal, got %v", err)
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	lock, err := runlock.Acquire(cfg)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer func() { _ = lock.Release() }()

	runner := pipeline.New(cfg, logging.NewNop(), false)
	if _, err := runner.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "another snapsort run") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}
