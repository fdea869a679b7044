package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPayload is returned when a message body is not valid JSON
	// or fails Job field validation.
	ErrInvalidPayload = errors.New("invalid job payload")

	// ErrNotAnImage is returned when fetched bytes cannot be decoded as a
	// supported image format.
	ErrNotAnImage = errors.New("payload is not a decodable image")
)

// FetchError wraps a failed image retrieval. Transient failures (network
// errors, timeouts, 5xx) are worth retrying on the next delivery;
// permanent ones (4xx, non-image content, oversize body) are not,
// although both feed the same receive-count policy.
type FetchError struct {
	URL       string
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("fetch %s: %s failure: %v", e.URL, kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failed filesystem write. Treated as transient at the
// orchestration level since disk and permission problems are
// environmental.
type StoreError struct {
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
