package scan_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"snapsort/internal/faults"
	"snapsort/internal/logging"
	"snapsort/internal/scan"
	"snapsort/internal/testsupport"
)

func TestScanEmitsRecordsInLexicalOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "b.jpg"), []byte("bb"))
	testsupport.WriteFile(t, filepath.Join(src, "a.jpg"), []byte("aa"))
	testsupport.WriteFile(t, filepath.Join(src, "sub", "c.png"), []byte("cc"))

	result, err := scan.New(cfg, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(result.Records))
	}
	want := []string{
		filepath.Join(src, "a.jpg"),
		filepath.Join(src, "b.jpg"),
		filepath.Join(src, "sub", "c.png"),
	}
	for i, rec := range result.Records {
		if rec.Path != want[i] {
			t.Fatalf("record %d = %q, want %q", i, rec.Path, want[i])
		}
	}
}

func TestScanFiltersExtensionsAndJunk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, filepath.Join(src, "keep.jpg"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(src, "notes.txt"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(src, "Thumbs.db"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(src, ".DS_Store"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(src, "UPPER.JPG"), []byte("x"))

	result, err := scan.New(cfg, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2 (keep.jpg, UPPER.JPG)", len(result.Records))
	}
}

func TestScanMissingRootIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.SourceDir = filepath.Join(testsupport.BaseDir(cfg), "nope")

	_, err := scan.New(cfg, logging.NewNop()).Scan(context.Background())
	if !errors.Is(err, faults.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
	if !faults.Fatal(err) {
		t.Fatal("missing root should be fatal")
	}
}

func TestScanSkipsQuarantineSubtree(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	// Simulate a rerun over an organized tree: source == output, with
	// previously quarantined files present.
	cfg.Paths.SourceDir = cfg.Paths.OutputDir
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.OutputDir, "2023", "07", "a.jpg"), []byte("kept"))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.QuarantineDir, "a.jpg"), []byte("kept"))

	result, err := scan.New(cfg, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("records = %d, want 1 (quarantine excluded)", len(result.Records))
	}
}

func TestScanCancelledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := scan.New(cfg, logging.NewNop()).Scan(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
