package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hqminh/image-resize-worker/internal/worker/domain"
)

const (
	// DefaultTimeout bounds a single image download.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxBytes bounds the downloaded body size (10 MiB).
	DefaultMaxBytes = 10 << 20
)

// Config holds fetcher settings.
type Config struct {
	Timeout  time.Duration
	MaxBytes int64
}

// Fetcher downloads image bytes over HTTP with a bounded timeout and a
// bounded maximum body size.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// New creates a Fetcher. Zero config fields fall back to defaults.
func New(cfg *Config, logger *slog.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch retrieves the image at url. Failures are classified into
// transient (connection errors, timeouts, 5xx, throttling) and
// permanent (other non-2xx statuses, non-image content type, oversize
// body) via domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Transient: false, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Dial failures, resets, and deadline expiry all land here.
		return nil, &domain.FetchError{URL: url, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &domain.FetchError{
			URL:       url,
			Transient: true,
			Err:       fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{
			URL:       url,
			Transient: false,
			Err:       fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if ct := resp.Header.Get("Content-Type"); !acceptableContentType(ct) {
		return nil, &domain.FetchError{
			URL:       url,
			Transient: false,
			Err:       fmt.Errorf("non-image content type %q", ct),
		}
	}

	if resp.ContentLength > f.maxBytes {
		return nil, &domain.FetchError{
			URL:       url,
			Transient: false,
			Err:       fmt.Errorf("declared size %d exceeds limit %d", resp.ContentLength, f.maxBytes),
		}
	}

	// Read one byte past the limit so an unreported oversize body is
	// detected without buffering the whole thing.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &domain.FetchError{URL: url, Transient: true, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &domain.FetchError{
			URL:       url,
			Transient: false,
			Err:       fmt.Errorf("body exceeds limit %d", f.maxBytes),
		}
	}

	f.logger.Debug("Image downloaded",
		slog.String("url", url),
		slog.Int("bytes", len(data)),
	)

	return data, nil
}

// acceptableContentType accepts image/* plus servers that do not declare
// a useful type; magic-byte sniffing downstream is authoritative anyway.
func acceptableContentType(ct string) bool {
	if ct == "" {
		return true
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))
	return ct == "" || ct == "application/octet-stream" || strings.HasPrefix(ct, "image/")
}
