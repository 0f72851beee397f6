// Package imagehash computes the two hashes used for duplicate detection:
// a SHA-256 digest for exact duplicates and a 64-bit perceptual dHash for
// near-duplicates that survive recompression or resizing.
package imagehash

import (
	"crypto/sha256"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/bits"
	"os"

	"github.com/corona10/goimagehash"
)

// SHA256File returns the hex-encoded SHA-256 digest of a file's bytes.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("imagehash: open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("imagehash: read %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// SHA256Bytes returns the hex-encoded SHA-256 digest of raw image bytes.
func SHA256Bytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// PerceptualHash returns the 16-hex-char dHash of an image file. The hash
// is computed from the luminance gradient of a downsampled copy, so
// visually similar images land within a few bits of each other.
func PerceptualHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("imagehash: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("imagehash: decode %s: %w", path, err)
	}

	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return "", fmt.Errorf("imagehash: dhash %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.GetHash()), nil
}

// HammingDistance counts the differing bits between two hex-encoded hashes
// of equal length.
func HammingDistance(a, b string) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("imagehash: hash lengths differ: %d != %d", len(a), len(b))
	}
	distance := 0
	for i := 0; i < len(a); i++ {
		na, err := nibble(a[i])
		if err != nil {
			return 0, err
		}
		nb, err := nibble(b[i])
		if err != nil {
			return 0, err
		}
		distance += bits.OnesCount8(na ^ nb)
	}
	return distance, nil
}

func nibble(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("imagehash: invalid hex character %q", c)
}
