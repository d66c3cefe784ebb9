// Package fingerprint derives the values used to decide whether two files are
// duplicates: SHA-256 content digests in exact mode and 64-bit perceptual
// hashes in near-duplicate mode.
package fingerprint

import (
	"fmt"
	"strconv"

	"github.com/corona10/goimagehash"
)

// Kind identifies how a fingerprint was derived.
type Kind string

const (
	// KindDigest is a SHA-256 digest over the full file content.
	KindDigest Kind = "sha256"
	// KindPartialDigest is a SHA-256 digest over the first and last MiB
	// plus the file size.
	KindPartialDigest Kind = "sha256p"
	// KindPerceptual is a 64-bit perception hash of the decoded image.
	KindPerceptual Kind = "phash"
)

// Fingerprint is a fixed-size value derived from file content. Two files with
// equal fingerprints are duplicates; perceptual fingerprints additionally
// match within a Hamming-distance threshold.
type Fingerprint struct {
	Kind Kind
	// Digest holds the hex digest for the digest kinds.
	Digest string
	// Bits holds the hash bits for the perceptual kind.
	Bits uint64
}

// String renders the fingerprint as "kind:value" for logs and the journal.
func (f Fingerprint) String() string {
	if f.Kind == KindPerceptual {
		return fmt.Sprintf("%s:%016x", f.Kind, f.Bits)
	}
	return fmt.Sprintf("%s:%s", f.Kind, f.Digest)
}

// Equal reports exact fingerprint equality.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Kind == other.Kind && f.Digest == other.Digest && f.Bits == other.Bits
}

// Distance returns the Hamming distance between two perceptual fingerprints.
// The boolean is false when the fingerprints are not comparable by distance.
func (f Fingerprint) Distance(other Fingerprint) (int, bool) {
	if f.Kind != KindPerceptual || other.Kind != KindPerceptual {
		return 0, false
	}
	a := goimagehash.NewImageHash(f.Bits, goimagehash.PHash)
	b := goimagehash.NewImageHash(other.Bits, goimagehash.PHash)
	dist, err := a.Distance(b)
	if err != nil {
		return 0, false
	}
	return dist, true
}

// ParseBits recovers perceptual hash bits from their hex rendering.
func ParseBits(hex string) (uint64, error) {
	return strconv.ParseUint(hex, 16, 64)
}
