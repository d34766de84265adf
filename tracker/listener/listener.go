// Package listener implements a tracker that waits for dataset file notifications on a push channel.
package listener

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/config"
	"github.com/c2fo/pilot/logging"
	"github.com/c2fo/pilot/notify"
	"github.com/c2fo/pilot/tracker"
	"github.com/c2fo/pilot/utils"
)

// Listener implements tracker.Tracker over a shared notify.Channel.
//
// Each Watch subscribes to the namespace of one dataset. Wait then consumes that
// subscription until every ticket target has reported FINISH for the ticket's session and
// action. Notifications belonging to other sessions, actions or ids are skipped since the
// channel is broadcast.
type Listener struct {
	channel notify.Channel
	event   string
	timeout time.Duration
	logger  zerolog.Logger
}

// Option is a functional option for configuring a Listener.
type Option func(*Listener)

// WithEvent sets the notification event name to accept. An empty name accepts every event.
// Default is DATASET_FILE_NOTIFICATION.
func WithEvent(event string) Option {
	return func(l *Listener) {
		l.event = event
	}
}

// WithTimeout sets the wall clock budget of each Wait. Zero means the wait is bounded by
// the context only. Default is 20 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Listener) {
		l.timeout = timeout
	}
}

// WithLogger sets the parent logger. Default is zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Listener) {
		l.logger = logger
	}
}

// New returns a Listener on channel.
func New(channel notify.Channel, opts ...Option) *Listener {
	l := &Listener{
		channel: channel,
		event:   pilot.EventDatasetFileNotification,
		timeout: 20 * time.Second,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.Component(l.logger, "listener")
	return l
}

// NewFromConfig returns a Listener on channel that accepts cfg.Notify.Event and waits at
// most cfg.NotifyTimeout. opts are applied afterwards.
func NewFromConfig(channel notify.Channel, cfg config.Config, opts ...Option) *Listener {
	return New(channel, append([]Option{
		WithEvent(cfg.Notify.Event),
		WithTimeout(cfg.NotifyTimeout),
	}, opts...)...)
}

// Watch subscribes to the namespace of datasetGeid.
func (l *Listener) Watch(ctx context.Context, datasetGeid string) (tracker.Watch[[]pilot.Notification], error) {
	namespace := utils.Namespace(datasetGeid)
	sub, err := l.channel.Subscribe(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return &watch{
		listener: l,
		sub:      sub,
		logger:   l.logger.With().Str("namespace", namespace).Logger(),
	}, nil
}

type watch struct {
	listener *Listener
	sub      notify.Subscription
	logger   zerolog.Logger
}

// Wait returns the matching notifications in arrival order once every target has reported.
// A ticket without targets returns an empty log immediately.
func (w *watch) Wait(ctx context.Context, t tracker.Ticket) ([]pilot.Notification, error) {
	pending := make(map[string]struct{}, len(t.Targets))
	for _, id := range t.Targets {
		pending[id] = struct{}{}
	}
	results := make([]pilot.Notification, 0, len(pending))
	if len(pending) == 0 {
		return results, nil
	}

	log := w.logger.With().Str("session_id", t.SessionID).Str("action", t.Action).Logger()

	var expired <-chan time.Time
	if w.listener.timeout > 0 {
		timer := time.NewTimer(w.listener.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	notifications := w.sub.Notifications()
	for {
		select {
		case n, ok := <-notifications:
			if !ok {
				return nil, fmt.Errorf("%s: %w", t.Action, pilot.ErrChannelClosed)
			}
			if !w.listener.matches(n, t, pending) {
				continue
			}
			delete(pending, n.SourceID())
			results = append(results, n)
			log.Debug().Str("source", n.SourceID()).Int("pending", len(pending)).Msg("job finished")
			if len(pending) == 0 {
				return results, nil
			}
		case <-expired:
			ids := pendingIDs(pending)
			log.Error().Strs("pending", ids).Msg("timed out waiting for notifications")
			return nil, &pilot.TimeoutError{Op: t.Action, After: w.listener.timeout, Pending: ids}
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", t.Action, ctx.Err())
		}
	}
}

func (w *watch) Close() error {
	return w.sub.Close()
}

// matches reports whether n settles one of the pending ids of t.
func (l *Listener) matches(n pilot.Notification, t tracker.Ticket, pending map[string]struct{}) bool {
	if l.event != "" && n.Event != l.event {
		return false
	}
	if n.Payload.SessionID != t.SessionID ||
		n.Payload.Status != pilot.StatusFinish ||
		string(n.Payload.Action) != t.Action {
		return false
	}
	_, ok := pending[n.SourceID()]
	return ok
}

func pendingIDs(pending map[string]struct{}) []string {
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var _ tracker.Tracker[[]pilot.Notification] = (*Listener)(nil)
