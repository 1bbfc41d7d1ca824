package image

import (
	"bytes"
	"fmt"

	"github.com/rwcarlsen/goexif/exif"
)

// GPS extracts the embedded GPS position from an image's EXIF data.
func GPS(data []byte) (lat, lon float64, err error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("no EXIF data: %w", err)
	}
	lat, lon, err = x.LatLong()
	if err != nil {
		return 0, 0, fmt.Errorf("no GPS tags: %w", err)
	}
	return lat, lon, nil
}
