// Package transfer moves file content between vfs locations and a project: chunked
// uploads into the Greenroom zone and packed, streamed downloads.
package transfer

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/logging"
)

var (
	// ErrNoUploadJob is returned when the pre-upload answer carries no resumable identifier.
	ErrNoUploadJob = errors.New("pre-upload returned no upload job")

	// ErrNoHashCode is returned when the pre-download answer carries no hash code.
	ErrNoHashCode = errors.New("pre-download returned no hash code")

	// ErrNoFullPath is returned when the download hash code does not name a file.
	ErrNoFullPath = errors.New("hash code has no full_path claim")
)

// Transfer uploads and downloads project files for one client session.
type Transfer struct {
	client     *client.Client
	chunkSize  int64
	interval   time.Duration
	timeout    time.Duration
	newBackOff func() backoff.BackOff
	logger     zerolog.Logger
}

// Option is a functional option for configuring a Transfer.
type Option func(*Transfer)

// WithChunkSize sets the size of each uploaded chunk. Default is config.ChunkSize.
func WithChunkSize(size int64) Option {
	return func(t *Transfer) {
		t.chunkSize = size
	}
}

// WithInterval sets the delay between upload and download status polls. Default is config.PollInterval.
func WithInterval(interval time.Duration) Option {
	return func(t *Transfer) {
		t.interval = interval
	}
}

// WithBackOff replaces the constant poll interval with a delay policy.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(t *Transfer) {
		t.newBackOff = newBackOff
	}
}

// WithTimeout bounds each status wait. Default is config.PollTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Transfer) {
		t.timeout = timeout
	}
}

// WithLogger sets the parent logger. Default is the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transfer) {
		t.logger = logger
	}
}

// New returns a Transfer for c, configured from c.Config() unless overridden.
func New(c *client.Client, opts ...Option) *Transfer {
	cfg := c.Config()
	t := &Transfer{
		client:    c,
		chunkSize: cfg.ChunkSize,
		interval:  cfg.PollInterval,
		timeout:   cfg.PollTimeout,
		logger:    c.Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.Component(t.logger, "transfer")
	return t
}

func (t *Transfer) policy() backoff.BackOff {
	if t.newBackOff != nil {
		return t.newBackOff()
	}
	return backoff.NewConstantBackOff(t.interval)
}

func sessionHeader(sessionID string) http.Header {
	h := http.Header{}
	h.Set("Session-ID", sessionID)
	return h
}

// failed reports whether a settled job ended without a result.
func failed(s pilot.Status) bool {
	return s == pilot.StatusTerminated || s == pilot.StatusError
}
