// Package media computes content digests and best-effort image metadata
// for uploaded files.
//
// Extraction never fails on an unrecognized format: the result is tagged
// Full when dimensions could be decoded, Partial when only size and digest
// are known. The only hard failure is an empty payload.
package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"

	// Decoders registered with image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned for zero-length payloads.
var ErrEmpty = errors.New("media: empty payload")

// Kind tags how much metadata was recovered.
type Kind int

const (
	// Partial carries size and digest only.
	Partial Kind = iota
	// Full additionally carries width, height and format.
	Full
)

func (k Kind) String() string {
	if k == Full {
		return "full"
	}
	return "partial"
}

// Metadata is the tagged extraction result. Width, Height and Format are
// only meaningful when Kind == Full.
type Metadata struct {
	Kind   Kind
	Size   int64
	Digest string
	Width  int
	Height int
	Format string
}

// Dimensions returns width and height when they are known.
func (m Metadata) Dimensions() (w, h int, ok bool) {
	if m.Kind != Full {
		return 0, 0, false
	}
	return m.Width, m.Height, true
}

// Extractor derives Metadata from raw bytes.
type Extractor interface {
	Extract(data []byte, fileName string) (Metadata, error)
}

// ImageExtractor decodes image headers with the registered decoders.
type ImageExtractor struct{}

// Extract hashes data and tries to decode its dimensions. fileName is not
// used for format detection; content sniffing decides.
func (ImageExtractor) Extract(data []byte, fileName string) (Metadata, error) {
	if len(data) == 0 {
		return Metadata{}, ErrEmpty
	}
	md := Metadata{
		Kind:   Partial,
		Size:   int64(len(data)),
		Digest: Hash(data),
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return md, nil
	}
	md.Kind = Full
	md.Width, md.Height, md.Format = cfg.Width, cfg.Height, format
	return md, nil
}

// Hash returns the lowercase hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsValidImage reports whether data decodes as a supported image format.
func IsValidImage(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}
