package resize

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqminh/image-resize-worker/internal/worker/domain"
)

// encodeTestImage produces an encoded width x height image in the given
// format.
func encodeTestImage(t *testing.T, width, height int, format imaging.Format) []byte {
	t.Helper()

	img := imaging.New(width, height, color.NRGBA{R: 180, G: 90, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int, string) {
	t.Helper()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height, format
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantFormat string
		wantExt    string
		wantErr    bool
	}{
		{
			name:       "jpeg",
			data:       encodeTestImage(t, 10, 10, imaging.JPEG),
			wantFormat: "jpeg",
			wantExt:    "jpg",
		},
		{
			name:       "png",
			data:       encodeTestImage(t, 10, 10, imaging.PNG),
			wantFormat: "png",
			wantExt:    "png",
		},
		{
			name:       "gif",
			data:       encodeTestImage(t, 10, 10, imaging.GIF),
			wantFormat: "gif",
			wantExt:    "gif",
		},
		{
			name:    "not an image",
			data:    []byte("definitely not pixels"),
			wantErr: true,
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ext, err := Detect(tt.data)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrNotAnImage)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantFormat, format)
				assert.Equal(t, tt.wantExt, ext)
			}
		})
	}
}

func TestThumbnail_DownscalesLongerEdge(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{name: "landscape 1000x500", width: 1000, height: 500, wantW: 256, wantH: 128},
		{name: "portrait 500x1000", width: 500, height: 1000, wantW: 128, wantH: 256},
		{name: "square 512x512", width: 512, height: 512, wantW: 256, wantH: 256},
		{name: "rounding 333x1000", width: 333, height: 1000, wantW: 85, wantH: 256},
		{name: "extreme aspect 3x1000", width: 3, height: 1000, wantW: 1, wantH: 256},
		{name: "just over bound 257x100", width: 257, height: 100, wantW: 256, wantH: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeTestImage(t, tt.width, tt.height, imaging.PNG)

			out, err := Thumbnail(data, 256)
			require.NoError(t, err)

			gotW, gotH, format := decodeDims(t, out)
			assert.Equal(t, tt.wantW, gotW)
			assert.Equal(t, tt.wantH, gotH)
			assert.Equal(t, "png", format, "output keeps the source format")
		})
	}
}

func TestThumbnail_NoUpscaling(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{name: "small 100x50", width: 100, height: 50},
		{name: "exactly at bound 256x128", width: 256, height: 128},
		{name: "tiny 1x1", width: 1, height: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeTestImage(t, tt.width, tt.height, imaging.JPEG)

			out, err := Thumbnail(data, 256)
			require.NoError(t, err)

			gotW, gotH, _ := decodeDims(t, out)
			assert.Equal(t, tt.width, gotW)
			assert.Equal(t, tt.height, gotH)
		})
	}
}

func TestThumbnail_KeepsSourceFormat(t *testing.T) {
	for _, format := range []imaging.Format{imaging.JPEG, imaging.PNG, imaging.GIF} {
		data := encodeTestImage(t, 600, 300, format)

		out, err := Thumbnail(data, 256)
		require.NoError(t, err)

		_, inFormat, err := image.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		_, outFormat, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, inFormat, outFormat)
	}
}

func TestThumbnail_Deterministic(t *testing.T) {
	data := encodeTestImage(t, 800, 600, imaging.PNG)

	first, err := Thumbnail(data, 256)
	require.NoError(t, err)
	second, err := Thumbnail(data, 256)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestThumbnail_RejectsNonImage(t *testing.T) {
	_, err := Thumbnail([]byte("not an image"), 256)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotAnImage)
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxEdge       int
		wantW, wantH  int
	}{
		{name: "within bound unchanged", width: 200, height: 100, maxEdge: 256, wantW: 200, wantH: 100},
		{name: "landscape", width: 1000, height: 500, maxEdge: 256, wantW: 256, wantH: 128},
		{name: "portrait", width: 500, height: 1000, maxEdge: 256, wantW: 128, wantH: 256},
		{name: "rounds to nearest", width: 1000, height: 333, maxEdge: 256, wantW: 256, wantH: 85},
		{name: "floors at one pixel", width: 1000, height: 2, maxEdge: 256, wantW: 256, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := targetSize(tt.width, tt.height, tt.maxEdge)
			assert.Equal(t, tt.wantW, gotW)
			assert.Equal(t, tt.wantH, gotH)
		})
	}
}
