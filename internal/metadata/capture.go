// Package metadata resolves the capture timestamp for scanned files.
//
// Resolution order: embedded EXIF data, then a timestamp embedded in the
// filename (camera and phone naming schemes), then the filesystem
// modification time. The chosen source is recorded on the Record so log
// output can show where a date came from.
package metadata

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"snapsort/internal/scan"
)

// filenamePatterns match timestamps produced by common camera and phone
// naming schemes, e.g. IMG_20230714_101530, PXL_20230714_101530123,
// DJI_20230714101530, 2023-07-14 10.15.30.
var filenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(20\d{2})(\d{2})(\d{2})[_-]?(\d{2})(\d{2})(\d{2})`),
	regexp.MustCompile(`(20\d{2})-(\d{2})-(\d{2})[ _T](\d{2})[.:](\d{2})[.:](\d{2})`),
}

// datePattern matches date-only filename stamps such as 20230714 or
// 2023-07-14 when no full timestamp is present.
var datePattern = regexp.MustCompile(`(20\d{2})-?(\d{2})-?(\d{2})`)

// Resolve fills the capture time and its source on the record. It never
// fails: the modification time is always available as the final fallback.
func Resolve(rec *scan.Record) {
	if ts, ok := captureFromEXIF(rec.Path); ok {
		rec.CaptureTime = ts
		rec.CaptureSource = scan.CaptureSourceEXIF
		return
	}
	if ts, ok := captureFromFilename(rec.Path); ok {
		rec.CaptureTime = ts
		rec.CaptureSource = scan.CaptureSourceFilename
		return
	}
	rec.CaptureTime = rec.ModTime
	rec.CaptureSource = scan.CaptureSourceModTime
}

func captureFromEXIF(path string) (time.Time, bool) {
	file, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer file.Close()

	data, err := exif.Decode(file)
	if err != nil {
		return time.Time{}, false
	}
	ts, err := data.DateTime()
	if err != nil || !plausible(ts) {
		return time.Time{}, false
	}
	return ts, true
}

func captureFromFilename(path string) (time.Time, bool) {
	name := filepath.Base(path)
	for _, pattern := range filenamePatterns {
		if m := pattern.FindStringSubmatch(name); m != nil {
			ts := buildTime(m[1], m[2], m[3], m[4], m[5], m[6])
			if plausible(ts) {
				return ts, true
			}
		}
	}
	if m := datePattern.FindStringSubmatch(name); m != nil {
		ts := buildTime(m[1], m[2], m[3], "0", "0", "0")
		if plausible(ts) {
			return ts, true
		}
	}
	return time.Time{}, false
}

func buildTime(year, month, day, hour, minute, second string) time.Time {
	y := atoi(year)
	mo := atoi(month)
	d := atoi(day)
	h := atoi(hour)
	mi := atoi(minute)
	s := atoi(second)
	if mo < 1 || mo > 12 || d < 1 || d > 31 || h > 23 || mi > 59 || s > 59 {
		return time.Time{}
	}
	return time.Date(y, time.Month(mo), d, h, mi, s, 0, time.Local)
}

// plausible rejects zero values and dates outside the era of digital
// photography, which filename matches on unrelated digit runs can produce.
func plausible(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	if ts.Year() < 1990 || ts.After(time.Now().AddDate(1, 0, 0)) {
		return false
	}
	return true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
