package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Message represents one delivery of a queue message to this worker.
// ReceiveCount is supplied by the queue (ApproximateReceiveCount) and is
// read fresh on every delivery; it is never cached across attempts.
type Message struct {
	MessageID     string
	Body          []byte
	ReceiptHandle string
	ReceiveCount  int
}

// Job is the unit of work parsed from a message body.
type Job struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
}

// ParseJob decodes and validates a raw message body into a Job.
// The ID doubles as the storage filename, so path separators and
// parent references are rejected here rather than at write time.
func ParseJob(body []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if job.ID == "" {
		return nil, fmt.Errorf("%w: missing or empty id", ErrInvalidPayload)
	}
	if strings.ContainsAny(job.ID, `/\`) || strings.Contains(job.ID, "..") {
		return nil, fmt.Errorf("%w: id %q is not a valid storage key", ErrInvalidPayload, job.ID)
	}

	if job.ImageURL == "" {
		return nil, fmt.Errorf("%w: missing image_url", ErrInvalidPayload)
	}
	u, err := url.Parse(job.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: image_url: %v", ErrInvalidPayload, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: image_url %q is not an absolute URL", ErrInvalidPayload, job.ImageURL)
	}

	return &job, nil
}
