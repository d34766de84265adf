// Package tracker defines how callers wait for asynchronous platform jobs to settle.
//
// A Tracker observes one scope: a project code for the polling tracker, a dataset geid
// for the push tracker. Await opens a Watch on the scope before the mutation is
// dispatched, so completion signals that arrive while the dispatch request is still in
// flight are not lost, then blocks on the Ticket the dispatch returned.
package tracker

import (
	"context"

	"github.com/c2fo/pilot/utils"
)

// Ticket correlates a dispatched mutation with its completion signals.
type Ticket struct {
	// SessionID is the correlation id the server echoes back in status records and notifications.
	SessionID string

	// Action is the push action (e.g. dataset_file_move) or the polled job type (e.g. data_transfer).
	Action string

	// Targets are the resource ids expected to report. The push tracker waits for every one
	// of them; the polling tracker ignores them.
	Targets []string
}

// Tracker starts watches on a scope.
type Tracker[R any] interface {
	Watch(ctx context.Context, scope string) (Watch[R], error)
}

// Watch is an open observation of one scope.
type Watch[R any] interface {
	// Wait blocks until the job identified by t settles, its budget runs out or ctx ends.
	Wait(ctx context.Context, t Ticket) (R, error)
	Close() error
}

// DispatchFunc issues a mutation and returns the ticket to wait on.
type DispatchFunc func(ctx context.Context) (Ticket, error)

// Await watches scope on tr, runs dispatch and waits for the resulting ticket to settle.
// The watch is closed before Await returns.
func Await[R any](ctx context.Context, tr Tracker[R], scope string, dispatch DispatchFunc) (R, error) {
	var zero R

	w, err := tr.Watch(ctx, scope)
	if err != nil {
		return zero, err
	}
	defer func() { _ = w.Close() }()

	t, err := dispatch(ctx)
	if err != nil {
		return zero, utils.WrapDispatchError(err)
	}

	return w.Wait(ctx, t)
}

// TrackerFunc adapts a function to the Tracker interface.
type TrackerFunc[R any] func(ctx context.Context, scope string) (Watch[R], error)

// Watch calls f.
func (f TrackerFunc[R]) Watch(ctx context.Context, scope string) (Watch[R], error) {
	return f(ctx, scope)
}
