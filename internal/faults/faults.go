// Package faults defines the error taxonomy shared by the pipeline stages.
//
// Sentinels classify failures by how the run should react: a missing source
// root aborts the run, an unreadable file is skipped with a warning, a
// destination conflict is resolved by suffixing, and a write failure is
// logged while the run continues with the remaining files.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPathNotFound marks a missing root path. Fatal for the run.
	ErrPathNotFound = errors.New("path not found")
	// ErrUnreadableFile marks a file that could not be read. The file is
	// skipped and surfaced as a warning.
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrDestinationConflict marks a destination occupied by a file with a
	// different fingerprint. Resolved by deterministic suffixing.
	ErrDestinationConflict = errors.New("destination conflict")
	// ErrWriteFailure marks a failed move, copy, or delete. Fatal for that
	// file's operation only.
	ErrWriteFailure = errors.New("write failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrWriteFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether the error should abort the whole run rather than be
// recorded and skipped.
func Fatal(err error) bool {
	return errors.Is(err, ErrPathNotFound)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
