package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"

	"snapsort/internal/config"
	"snapsort/internal/faults"
	"snapsort/internal/logging"
	"snapsort/internal/scan"
)

// fastDigestWindow is how much of the head and tail of a file the partial
// digest covers.
const fastDigestWindow = 1 << 20

// Computer produces fingerprints according to the configured detection mode.
type Computer struct {
	mode   string
	fast   bool
	logger *slog.Logger
}

// NewComputer constructs a fingerprint computer from configuration.
func NewComputer(cfg *config.Config, logger *slog.Logger) *Computer {
	return &Computer{
		mode:   cfg.Detector.Mode,
		fast:   cfg.Detector.FastDigest,
		logger: logging.NewComponentLogger(logger, "detector"),
	}
}

// Compute derives the fingerprint for a record. In perceptual mode an image
// that cannot be decoded falls back to a content digest of its own, with a
// warning, so the file still flows through grouping and filing.
func (c *Computer) Compute(rec scan.Record) (Fingerprint, error) {
	if c.mode == config.ModePerceptual {
		fp, err := c.perceptual(rec.Path)
		if err == nil {
			return fp, nil
		}
		var decodeErr *decodeError
		if errors.As(err, &decodeErr) {
			c.logger.Warn("image not decodable, falling back to content digest",
				logging.String(logging.FieldPath, rec.Path),
				logging.Error(decodeErr.cause),
			)
			return c.digest(rec.Path)
		}
		return Fingerprint{}, err
	}
	return c.digest(rec.Path)
}

func (c *Computer) digest(path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, faults.Wrap(faults.ErrUnreadableFile, "detect", "open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Fingerprint{}, faults.Wrap(faults.ErrUnreadableFile, "detect", "stat", path, err)
	}

	hasher := sha256.New()
	kind := KindDigest

	if c.fast && info.Size() > 2*fastDigestWindow {
		kind = KindPartialDigest
		var sizeBytes [8]byte
		binary.BigEndian.PutUint64(sizeBytes[:], uint64(info.Size()))
		hasher.Write(sizeBytes[:])

		if _, err := io.CopyN(hasher, file, fastDigestWindow); err != nil {
			return Fingerprint{}, faults.Wrap(faults.ErrUnreadableFile, "detect", "read head", path, err)
		}
		if _, err := file.Seek(-fastDigestWindow, io.SeekEnd); err != nil {
			return Fingerprint{}, faults.Wrap(faults.ErrUnreadableFile, "detect", "seek tail", path, err)
		}
		if _, err := io.Copy(hasher, file); err != nil {
			return Fingerprint{}, faults.Wrap(faults.ErrUnreadableFile, "detect", "read tail", path, err)
		}
	} else {
		if _, err := io.Copy(hasher, file); err != nil {
			return Fingerprint{}, faults.Wrap(faults.ErrUnreadableFile, "detect", "read", path, err)
		}
	}

	return Fingerprint{Kind: kind, Digest: hex.EncodeToString(hasher.Sum(nil))}, nil
}

func (c *Computer) perceptual(path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, faults.Wrap(faults.ErrUnreadableFile, "detect", "open", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return Fingerprint{}, &decodeError{path: path, cause: err}
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return Fingerprint{}, &decodeError{path: path, cause: err}
	}
	return Fingerprint{Kind: KindPerceptual, Bits: hash.GetHash()}, nil
}

type decodeError struct {
	path  string
	cause error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decode image %s: %v", e.path, e.cause)
}

func (e *decodeError) Unwrap() error { return e.cause }
