// Package exifmeta extracts capture metadata from sighting photos.
package exifmeta

import (
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata is what a photo tells us about the sighting. Timestamp is always
// set (capture time, or receipt time when the photo carries none). GPS is
// optional: nil coordinates mean the photo had no location and the
// conversation must ask for one.
type Metadata struct {
	Timestamp time.Time
	Latitude  *float64
	Longitude *float64
}

// Extract reads EXIF metadata from an image file. Missing EXIF blocks,
// timestamps, or GPS tags are absence, not errors; only an unreadable file
// fails.
func Extract(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("exifmeta: open %s: %w", path, err)
	}
	defer f.Close()

	meta := Metadata{Timestamp: time.Now()}

	x, err := exif.Decode(f)
	if err != nil {
		// No EXIF data at all. Fall back to receipt time, no GPS.
		return meta, nil
	}

	if ts, err := x.DateTime(); err == nil {
		meta.Timestamp = ts
	}

	if lat, lon, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &lon
	}

	return meta, nil
}
