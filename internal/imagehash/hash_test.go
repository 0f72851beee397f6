package imagehash

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestImage encodes a small gradient PNG to disk and returns its path.
// A gradient (rather than a flat fill) gives the dHash real luminance
// transitions to latch onto.
func writeTestImage(t *testing.T, name string, seed uint8) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(x*8) + seed
			img.Set(x, y, color.RGBA{R: v, G: v / 2, B: uint8(y * 8), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write test image: %v", err)
	}
	return path
}

func TestSHA256Bytes_Deterministic(t *testing.T) {
	a := SHA256Bytes([]byte("same bytes"))
	b := SHA256Bytes([]byte("same bytes"))
	if a != b {
		t.Errorf("identical bytes hashed differently: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}

	c := SHA256Bytes([]byte("different bytes"))
	if a == c {
		t.Error("different bytes produced the same hash")
	}
}

func TestSHA256File_MatchesBytes(t *testing.T) {
	data := []byte("file contents")
	path := filepath.Join(t.TempDir(), "f.bin")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	fromFile, err := SHA256File(path)
	if err != nil {
		t.Fatalf("SHA256File: %v", err)
	}
	if fromFile != SHA256Bytes(data) {
		t.Errorf("file hash %s != bytes hash %s", fromFile, SHA256Bytes(data))
	}
}

func TestSHA256File_MissingFile(t *testing.T) {
	if _, err := SHA256File(filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPerceptualHash(t *testing.T) {
	path := writeTestImage(t, "a.png", 0)

	h1, err := PerceptualHash(path)
	if err != nil {
		t.Fatalf("PerceptualHash: %v", err)
	}
	if len(h1) != 16 {
		t.Errorf("hash %q length = %d, want 16 hex chars", h1, len(h1))
	}

	h2, err := PerceptualHash(path)
	if err != nil {
		t.Fatalf("PerceptualHash second call: %v", err)
	}
	if h1 != h2 {
		t.Errorf("same image hashed differently: %s != %s", h1, h2)
	}
}

func TestPerceptualHash_SimilarImagesAreClose(t *testing.T) {
	// A tiny brightness shift should move few or no bits.
	h1, err := PerceptualHash(writeTestImage(t, "a.png", 0))
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	h2, err := PerceptualHash(writeTestImage(t, "b.png", 2))
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}

	d, err := HammingDistance(h1, h2)
	if err != nil {
		t.Fatalf("HammingDistance: %v", err)
	}
	if d > 5 {
		t.Errorf("distance between near-identical images = %d, want <= 5", d)
	}
}

func TestPerceptualHash_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.jpg")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := PerceptualHash(path); err == nil {
		t.Fatal("expected decode error for non-image file")
	}
}

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "a1b2c3d4e5f60718", "a1b2c3d4e5f60718", 0},
		{"one bit", "0000000000000000", "0000000000000001", 1},
		{"one nibble all bits", "0000000000000000", "000000000000000f", 4},
		{"all bits", "0000000000000000", "ffffffffffffffff", 64},
		{"case insensitive", "ABCD", "abcd", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HammingDistance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("HammingDistance: %v", err)
			}
			if got != tt.want {
				t.Errorf("distance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHammingDistance_Errors(t *testing.T) {
	if _, err := HammingDistance("abcd", "abc"); err == nil {
		t.Error("expected error for length mismatch")
	}
	if _, err := HammingDistance("zzzz", "0000"); err == nil {
		t.Error("expected error for non-hex input")
	}
}
