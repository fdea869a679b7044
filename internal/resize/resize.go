package resize

import (
	"bytes"
	"fmt"
	"image"

	// Register decoders with the standard 'image' package so
	// image.Decode and image.DecodeConfig can sniff these formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/hqminh/image-resize-worker/internal/worker/domain"
)

// DefaultMaxEdge is the thumbnail bound applied when no override is
// configured: the longer image edge is scaled down to this many pixels.
const DefaultMaxEdge = 256

// extensions maps the format name reported by image.DecodeConfig to the
// file extension used for stored variants.
var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"bmp":  "bmp",
	"tiff": "tiff",
}

// encodeFormats maps the same format names to imaging's encoder enum.
var encodeFormats = map[string]imaging.Format{
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tiff": imaging.TIFF,
}

// Detect sniffs the image format from the magic bytes of data and
// returns the format name plus the file extension to store it under.
// The URL the bytes came from plays no part here; URLs may lack or lie
// about their extension.
func Detect(data []byte) (format, ext string, err error) {
	_, format, err = image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrNotAnImage, err)
	}
	ext, ok := extensions[format]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported format %q", domain.ErrNotAnImage, format)
	}
	return format, ext, nil
}

// Thumbnail decodes data, scales it so the longer edge equals maxEdge
// while preserving aspect ratio, and re-encodes it in its original
// format. Images whose longer edge is already within maxEdge are never
// upscaled; they are still re-encoded at their current size so every
// resized variant goes through the same encoder path.
func Thumbnail(data []byte, maxEdge int) ([]byte, error) {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}

	img, formatStr, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotAnImage, err)
	}

	format, ok := encodeFormats[formatStr]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrNotAnImage, formatStr)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	targetW, targetH := targetSize(width, height, maxEdge)

	out := img
	if targetW != width || targetH != height {
		out = imaging.Resize(img, targetW, targetH, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, out, format); err != nil {
		return nil, fmt.Errorf("failed to re-encode %s image: %w", formatStr, err)
	}
	return buf.Bytes(), nil
}

// targetSize computes the output dimensions: the longer edge becomes
// maxEdge, the shorter edge is scaled proportionally and rounded to the
// nearest pixel with a 1px floor. Inputs already within the bound are
// returned unchanged.
func targetSize(width, height, maxEdge int) (int, int) {
	if width <= maxEdge && height <= maxEdge {
		return width, height
	}

	if width >= height {
		scaled := (height*maxEdge + width/2) / width
		if scaled < 1 {
			scaled = 1
		}
		return maxEdge, scaled
	}

	scaled := (width*maxEdge + height/2) / height
	if scaled < 1 {
		scaled = 1
	}
	return scaled, maxEdge
}
