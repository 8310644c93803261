package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
)

// ThumbnailMaxSide bounds the width and height of images embedded in documents.
const ThumbnailMaxSide = 800

var errNotDataURL = errors.New("image data is not a base64 data URL")

// FileSizeLabel renders a byte count for display, e.g. "1.2 MB".
func FileSizeLabel(size int64) string {
	if size <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(size))
}

// DecodeDataURL returns the raw bytes of a "data:<type>;base64,<payload>" string.
func DecodeDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, errNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return data, nil
}

// Thumbnail decodes an image data URL and re-encodes it as a JPEG that fits
// into ThumbnailMaxSide on both axes. Smaller images keep their size.
func Thumbnail(dataURL string) ([]byte, error) {
	raw, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > ThumbnailMaxSide || b.Dy() > ThumbnailMaxSide {
		img = imaging.Fit(img, ThumbnailMaxSide, ThumbnailMaxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
