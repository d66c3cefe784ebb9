package organize

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// destinationDir maps a capture time to its folder under the output root.
// Pure function: equal timestamps always yield equal folders.
func destinationDir(outputRoot, layout string, ts time.Time) string {
	return filepath.Join(outputRoot, ts.Format(layout))
}

// ParseFolder recovers the timestamp encoded in a destination folder path
// relative to the output root. It is the inverse of the layout mapping and
// exists so the convention stays round-trippable.
func ParseFolder(layout, rel string) (time.Time, error) {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	ts, err := time.Parse(layout, rel)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse folder %q with layout %q: %w", rel, layout, err)
	}
	return ts, nil
}

// normalizeName returns the NFC form of a file name. Photo names that crossed
// a macOS filesystem arrive NFD-decomposed; normalizing keeps equality checks
// and suffix derivation byte-stable.
func normalizeName(name string) string {
	return norm.NFC.String(name)
}

// suffixedName appends a deterministic counter before the extension:
// IMG_001.jpg, 1 -> IMG_001_1.jpg.
func suffixedName(name string, n int) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}
