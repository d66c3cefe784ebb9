package scan

import "time"

// Capture time sources, in order of preference.
const (
	CaptureSourceEXIF     = "exif"
	CaptureSourceFilename = "filename"
	CaptureSourceModTime  = "mtime"
)

// Record describes a single scanned file. Immutable once produced except for
// the capture fields, which the metadata stage fills in.
type Record struct {
	// Path is the absolute file path.
	Path string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the filesystem modification time.
	ModTime time.Time

	// CaptureTime is the best-known moment the photo was taken. Zero until
	// the metadata stage resolves it.
	CaptureTime time.Time
	// CaptureSource names where CaptureTime came from (exif, filename, mtime).
	CaptureSource string
}

// Warning records a per-file problem that did not stop the run.
type Warning struct {
	Path string
	Err  error
}

// Result is the outcome of a scan.
type Result struct {
	Records  []Record
	Warnings []Warning
}
