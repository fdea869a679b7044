package fetch

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqminh/image-resize-worker/internal/worker/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()

	img := imaging.New(20, 10, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func TestFetch_Success(t *testing.T) {
	payload := jpegBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
	defer server.Close()

	fetcher := New(&Config{}, discardLogger())

	data, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetch_NoContentTypeHeaderAccepted(t *testing.T) {
	payload := jpegBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil // suppress sniffed default
		w.Write(payload)
	}))
	defer server.Close()

	fetcher := New(&Config{}, discardLogger())

	data, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetch_Classification(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantTransient bool
	}{
		{
			name: "404 is permanent",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			wantTransient: false,
		},
		{
			name: "403 is permanent",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantTransient: false,
		},
		{
			name: "500 is transient",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantTransient: true,
		},
		{
			name: "503 is transient",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantTransient: true,
		},
		{
			name: "429 is transient",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantTransient: true,
		},
		{
			name: "non-image content type is permanent",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Write([]byte("<html>not found page pretending to be 200</html>"))
			},
			wantTransient: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			fetcher := New(&Config{}, discardLogger())

			_, err := fetcher.Fetch(context.Background(), server.URL)
			require.Error(t, err)

			var fetchErr *domain.FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, tt.wantTransient, fetchErr.Transient)
		})
	}
}

func TestFetch_ConnectionErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := New(&Config{}, discardLogger())

	_, err := fetcher.Fetch(context.Background(), url)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Transient)
}

func TestFetch_TimeoutIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := New(&Config{Timeout: 30 * time.Millisecond}, discardLogger())

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Transient)
}

func TestFetch_OversizeBody(t *testing.T) {
	big := make([]byte, 4096)

	t.Run("declared via content-length", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(big)
		}))
		defer server.Close()

		fetcher := New(&Config{MaxBytes: 1024}, discardLogger())

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)

		var fetchErr *domain.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.False(t, fetchErr.Transient)
	})

	t.Run("undeclared chunked body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			flusher := w.(http.Flusher)
			w.Write(big[:2048])
			flusher.Flush() // forces chunked encoding, no Content-Length
			w.Write(big[2048:])
		}))
		defer server.Close()

		fetcher := New(&Config{MaxBytes: 1024}, discardLogger())

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)

		var fetchErr *domain.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.False(t, fetchErr.Transient)
	})
}
