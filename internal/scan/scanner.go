package scan

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"snapsort/internal/config"
	"snapsort/internal/faults"
	"snapsort/internal/logging"
)

// Scanner walks a source root and emits Records for recognized image files.
type Scanner struct {
	root     string
	exts     map[string]struct{}
	skip     map[string]struct{}
	excluded []string
	logger   *slog.Logger
}

// New constructs a scanner from configuration. The quarantine and log
// directories are excluded from the walk when they sit under the source root.
func New(cfg *config.Config, logger *slog.Logger) *Scanner {
	return &Scanner{
		root:     cfg.Paths.SourceDir,
		exts:     cfg.ExtensionSet(),
		skip:     cfg.SkipNameSet(),
		excluded: []string{cfg.Paths.QuarantineDir, cfg.Paths.LogDir},
		logger:   logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks the root and returns the matched records in lexical path order.
// A missing root is fatal; unreadable entries are reported as warnings and
// skipped.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrPathNotFound, "scan", "stat root", s.root, err)
		}
		return nil, faults.Wrap(faults.ErrPathNotFound, "scan", "stat root", "source root is not accessible", err)
	}
	if !info.IsDir() {
		return nil, faults.Wrap(faults.ErrPathNotFound, "scan", "stat root", s.root+" is not a directory", nil)
	}

	result := &Result{}
	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			result.warn(path, faults.Wrap(faults.ErrUnreadableFile, "scan", "walk", "", err))
			s.logger.Warn("skipping unreadable entry", logging.String(logging.FieldPath, path), logging.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if s.excludedDir(path) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if _, junk := s.skip[name]; junk {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := s.exts[ext]; !ok {
			return nil
		}
		fileInfo, err := d.Info()
		if err != nil {
			result.warn(path, faults.Wrap(faults.ErrUnreadableFile, "scan", "stat", "", err))
			s.logger.Warn("skipping unstattable file", logging.String(logging.FieldPath, path), logging.Error(err))
			return nil
		}
		result.Records = append(result.Records, Record{
			Path:    path,
			Size:    fileInfo.Size(),
			ModTime: fileInfo.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	s.logger.Info("scan complete",
		logging.Int("files", len(result.Records)),
		logging.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (s *Scanner) excludedDir(path string) bool {
	for _, dir := range s.excluded {
		if dir == "" {
			continue
		}
		if path == dir {
			return true
		}
	}
	return false
}

func (r *Result) warn(path string, err error) {
	r.Warnings = append(r.Warnings, Warning{Path: path, Err: err})
}
