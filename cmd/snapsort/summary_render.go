package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"snapsort/internal/pipeline"
)

// timePrecision keeps elapsed times readable in the summary line.
const timePrecision = 10 * time.Millisecond

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func renderSummary(out io.Writer, summary *pipeline.Summary, colorize bool) {
	header := fmt.Sprintf("Run %s finished in %s", summary.RunID, summary.Elapsed.Round(timePrecision))
	if summary.DryRun {
		header = fmt.Sprintf("Dry run %s finished in %s (no files were touched)", summary.RunID, summary.Elapsed.Round(timePrecision))
	}
	fmt.Fprintln(out, paint(header, ansiGreen, colorize))

	c := summary.Counters
	fmt.Fprintf(out, "  scanned %d files, %d duplicate groups, %d duplicates\n", c.Scanned, c.Groups, c.Duplicates)
	fmt.Fprintf(out, "  organized %d, skipped %d, deleted %d, quarantined %d\n", c.Organized, c.Skipped, c.Deleted, c.Quarantined)

	if len(summary.Warnings) == 0 {
		return
	}
	fmt.Fprintln(out, paint(fmt.Sprintf("  %d warnings:", len(summary.Warnings)), ansiYellow, colorize))
	for _, w := range summary.Warnings {
		fmt.Fprintf(out, "    %s: %v\n", w.Path, w.Err)
	}
}

func paint(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
