package media

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// ThumbnailWidth is the width of generated car photo previews.
const ThumbnailWidth = 480

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true}

// IsImage reports whether ext names a format imaging can decode.
func IsImage(ext string) bool {
	return imageExts[strings.ToLower(ext)]
}

// Thumbnail decodes an image and returns a JPEG scaled to width, keeping the
// aspect ratio. Images narrower than width are re-encoded unscaled.
func Thumbnail(r io.Reader, width int) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
