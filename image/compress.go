package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const (
	maxImageDimension = 1024 // Maximum width or height in pixels
	jpegQuality       = 85
)

// Orientation extracts the EXIF orientation tag, defaulting to 1 when the
// image carries no usable EXIF data.
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// applyOrientation bakes the EXIF orientation into the pixels so the stored
// payload renders upright everywhere.
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Orientations 5-8 swap the axes.
	ow, oh := w, h
	if orientation >= 5 {
		ow, oh = h, w
	}
	out := image.NewRGBA(image.Rect(0, 0, ow, oh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var tx, ty int
			switch orientation {
			case 2: // flip horizontal
				tx, ty = w-1-x, y
			case 3: // rotate 180
				tx, ty = w-1-x, h-1-y
			case 4: // flip vertical
				tx, ty = x, h-1-y
			case 5: // transpose
				tx, ty = y, x
			case 6: // rotate 90 clockwise
				tx, ty = h-1-y, x
			case 7: // transverse
				tx, ty = h-1-y, w-1-x
			case 8: // rotate 90 counter-clockwise
				tx, ty = y, w-1-x
			}
			out.Set(tx, ty, img.At(x, y))
		}
	}
	return out
}

// Compress orientation-corrects an image and scales it down to fit within
// maxImageDimension, preserving aspect ratio. Images already within limits
// and without orientation issues are returned untouched.
func Compress(data []byte) ([]byte, error) {
	orientation := Orientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if orientation != 1 {
		img = applyOrientation(img, orientation)
		log.Infof("Applied orientation correction: %d", orientation)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if orientation == 1 && width <= maxImageDimension && height <= maxImageDimension {
		return data, nil
	}

	newWidth, newHeight := width, height
	if width > maxImageDimension || height > maxImageDimension {
		scale := float64(maxImageDimension) / float64(width)
		if s := float64(maxImageDimension) / float64(height); s < scale {
			scale = s
		}
		newWidth = int(float64(width) * scale)
		newHeight = int(float64(height) * scale)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode compressed image: %w", err)
	}

	log.Infof("Image compressed: %d bytes -> %d bytes (%dx%d -> %dx%d, orientation: %d)",
		len(data), buf.Len(), width, height, newWidth, newHeight, orientation)
	return buf.Bytes(), nil
}

// Normalize applies Compress to a data-URL payload. Payloads that cannot be
// decoded as images are kept as-is; they are opaque to the service.
func Normalize(payload string) string {
	_, data, err := DecodeDataURL(payload)
	if err != nil {
		log.Warnf("Keeping image payload as-is, not a data URL: %v", err)
		return payload
	}
	compressed, err := Compress(data)
	if err != nil {
		log.Warnf("Keeping image payload as-is, not decodable: %v", err)
		return payload
	}
	if bytes.Equal(compressed, data) {
		return payload
	}
	return EncodeDataURL(compressed)
}
