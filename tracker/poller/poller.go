// Package poller implements a tracker that polls the project file task endpoint.
package poller

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/logging"
	"github.com/c2fo/pilot/tracker"
)

// DefaultTaskPath is the project file task status endpoint.
const DefaultTaskPath = "/portal/v1/files/actions/tasks"

// Sender is the subset of *client.Requester used by the Poller.
type Sender interface {
	Do(ctx context.Context, req *client.Request) (*client.Response, error)
}

// Poller implements tracker.Tracker by polling job status records of a project.
//
// Each Wait polls the task endpoint with the ticket's job type and session id until the
// matching record leaves the RUNNING state, then returns that record. Waits are bounded by
// the configured timeout and by the caller's context.
type Poller struct {
	sender     Sender
	taskPath   string
	interval   time.Duration
	timeout    time.Duration
	newBackOff func() backoff.BackOff
	logger     zerolog.Logger
}

// Option is a functional option for configuring a Poller.
type Option func(*Poller)

// WithInterval sets a constant delay between polls. Default is 2 seconds.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithBackOff replaces the constant interval with a delay policy. newBackOff is called once
// per Wait since backoff policies are stateful.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(p *Poller) {
		p.newBackOff = newBackOff
	}
}

// WithTimeout bounds each Wait. Zero means the wait is bounded by the context only.
// Default is 10 minutes.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Poller) {
		p.timeout = timeout
	}
}

// WithTaskPath overrides the status endpoint.
func WithTaskPath(path string) Option {
	return func(p *Poller) {
		p.taskPath = path
	}
}

// WithLogger sets the parent logger. Default is zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// New returns a Poller sending status requests through sender.
func New(sender Sender, opts ...Option) *Poller {
	p := &Poller{
		sender:   sender,
		taskPath: DefaultTaskPath,
		interval: 2 * time.Second,
		timeout:  10 * time.Minute,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.Component(p.logger, "poller")
	return p
}

// Watch returns a watch over the jobs of projectCode. Polling needs no setup, so this never fails.
func (p *Poller) Watch(_ context.Context, projectCode string) (tracker.Watch[pilot.JobRecord], error) {
	return &watch{poller: p, projectCode: projectCode}, nil
}

// Status returns the job records of jobType and sessionID in projectCode.
func (p *Poller) Status(ctx context.Context, jobType, projectCode, sessionID string) ([]pilot.JobRecord, error) {
	params := url.Values{}
	params.Set("action", jobType)
	params.Set("project_code", projectCode)
	params.Set("session_id", sessionID)

	resp, err := p.sender.Do(ctx, &client.Request{Method: http.MethodGet, Path: p.taskPath, Params: params})
	if err != nil {
		return nil, err
	}
	return client.Decode[[]pilot.JobRecord](resp)
}

func (p *Poller) policy() backoff.BackOff {
	if p.newBackOff != nil {
		return p.newBackOff()
	}
	return backoff.NewConstantBackOff(p.interval)
}

type watch struct {
	poller      *Poller
	projectCode string
}

func (w *watch) Wait(ctx context.Context, t tracker.Ticket) (pilot.JobRecord, error) {
	p := w.poller
	log := p.logger.With().Str("job_type", t.Action).Str("session_id", t.SessionID).Logger()

	return Until(ctx, t.Action, p.policy(), p.timeout, func(ctx context.Context) (pilot.JobRecord, bool, error) {
		records, err := p.Status(ctx, t.Action, w.projectCode, t.SessionID)
		if err != nil {
			return pilot.JobRecord{}, false, err
		}
		rec, ok := Select(records, t.SessionID, log)
		if !ok {
			log.Debug().Msg("job not visible yet")
			return pilot.JobRecord{}, false, nil
		}
		log.Debug().Str("status", string(rec.Status)).Msg("polled")
		return rec, rec.Status.Settled(), nil
	})
}

func (w *watch) Close() error { return nil }

// Select picks the record belonging to sessionID. Records that carry no session id at all
// come from servers that ignore the session filter, so the first of them is used and a
// warning logged. Records naming other sessions belong to concurrent jobs and select
// nothing, as does an empty slice.
func Select(records []pilot.JobRecord, sessionID string, log zerolog.Logger) (pilot.JobRecord, bool) {
	anonymous := -1
	for i, r := range records {
		if r.SessionID == sessionID {
			return r, true
		}
		if r.SessionID == "" && anonymous < 0 {
			anonymous = i
		}
	}
	if anonymous < 0 {
		return pilot.JobRecord{}, false
	}
	log.Warn().Int("records", len(records)).Msg("no status record for session, using first record without one")
	return records[anonymous], true
}

var _ tracker.Tracker[pilot.JobRecord] = (*Poller)(nil)
