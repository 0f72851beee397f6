package bluesky

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"github.com/nfnt/resize"
)

// maxBlobBytes is the PDS blob size limit (1000000 bytes minus headroom).
const maxBlobBytes = 976 * 1024

// PrepareImage reads an image file and re-encodes it as JPEG under the
// blob size limit, stepping quality down and then scaling the image
// until it fits.
func PrepareImage(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bluesky: open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("bluesky: decode image %s: %w", path, err)
	}

	for quality := 90; quality >= 30; quality -= 10 {
		data, err := encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(data) <= maxBlobBytes {
			return data, nil
		}
	}

	// Still too large at minimum quality; halve dimensions until it fits.
	for i := 0; i < 4; i++ {
		w := img.Bounds().Dx() / 2
		if w < 64 {
			break
		}
		img = resize.Resize(uint(w), 0, img, resize.Lanczos3)
		data, err := encodeJPEG(img, 75)
		if err != nil {
			return nil, err
		}
		if len(data) <= maxBlobBytes {
			return data, nil
		}
	}

	return nil, fmt.Errorf("bluesky: image %s cannot be compressed under %d bytes", path, maxBlobBytes)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("bluesky: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
