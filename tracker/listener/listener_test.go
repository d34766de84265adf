package listener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/config"
	"github.com/c2fo/pilot/mocks"
	"github.com/c2fo/pilot/notify/redischannel"
	"github.com/c2fo/pilot/tracker"
)

func finished(id, session string, action pilot.Action) pilot.Notification {
	n := pilot.Notification{Event: pilot.EventDatasetFileNotification}
	n.Payload.Source.GlobalEntityID = id
	n.Payload.SessionID = session
	n.Payload.Status = pilot.StatusFinish
	n.Payload.Action = action
	return n
}

type ListenerTestSuite struct {
	suite.Suite
	channel *mocks.Channel
	sub     *mocks.Subscription
	events  chan pilot.Notification
	ticket  tracker.Ticket
}

func (s *ListenerTestSuite) SetupTest() {
	s.channel = mocks.NewChannel(s.T())
	s.sub = mocks.NewSubscription(s.T())
	s.events = make(chan pilot.Notification, 16)
	s.ticket = tracker.Ticket{SessionID: "S", Action: string(pilot.ActionMove), Targets: []string{"A", "B"}}
}

func (s *ListenerTestSuite) expectSubscription() {
	s.channel.EXPECT().Subscribe(mock.Anything, "/D").Return(s.sub, nil).Once()
	s.sub.EXPECT().Notifications().Return(s.events).Maybe()
	s.sub.EXPECT().Close().Return(nil).Once()
}

func (s *ListenerTestSuite) wait(l *Listener, t tracker.Ticket) ([]pilot.Notification, error) {
	w, err := l.Watch(context.Background(), "D")
	s.Require().NoError(err)
	defer func() { s.NoError(w.Close()) }()
	return w.Wait(context.Background(), t)
}

func (s *ListenerTestSuite) TestAllTargetsReportInArrivalOrder() {
	s.expectSubscription()
	s.events <- finished("B", "S", pilot.ActionMove)
	s.events <- finished("A", "S", pilot.ActionMove)

	log, err := s.wait(New(s.channel), s.ticket)

	s.Require().NoError(err)
	s.Require().Len(log, 2)
	s.Equal("B", log[0].SourceID())
	s.Equal("A", log[1].SourceID())
}

func (s *ListenerTestSuite) TestNonMatchingNotificationsAreIgnored() {
	s.expectSubscription()

	wrongEvent := finished("A", "S", pilot.ActionMove)
	wrongEvent.Event = "PROJECT_NOTIFICATION"
	running := finished("A", "S", pilot.ActionMove)
	running.Payload.Status = pilot.StatusRunning

	s.events <- finished("A", "other-session", pilot.ActionMove)
	s.events <- finished("A", "S", pilot.ActionDelete)
	s.events <- finished("foreign", "S", pilot.ActionMove)
	s.events <- wrongEvent
	s.events <- running
	s.events <- finished("A", "S", pilot.ActionMove)
	s.events <- finished("A", "S", pilot.ActionMove) // duplicate after settling
	s.events <- finished("B", "S", pilot.ActionMove)

	log, err := s.wait(New(s.channel), s.ticket)

	s.Require().NoError(err)
	s.Require().Len(log, 2)
	s.Equal("A", log[0].SourceID())
	s.Equal("B", log[1].SourceID())
}

func (s *ListenerTestSuite) TestTimeoutNamesPendingIDs() {
	s.expectSubscription()
	s.events <- finished("B", "S", pilot.ActionMove)
	s.events <- finished("A", "other", pilot.ActionMove)

	ticket := s.ticket
	ticket.Targets = []string{"C", "A", "B"}
	_, err := s.wait(New(s.channel, WithTimeout(50*time.Millisecond)), ticket)

	var timeoutErr *pilot.TimeoutError
	s.Require().ErrorAs(err, &timeoutErr)
	s.Equal([]string{"A", "C"}, timeoutErr.Pending)
	s.Equal("dataset_file_move", timeoutErr.Op)
	s.ErrorIs(err, pilot.ErrTimeout)
}

func (s *ListenerTestSuite) TestEmptyTicketReturnsImmediately() {
	s.channel.EXPECT().Subscribe(mock.Anything, "/D").Return(s.sub, nil).Once()
	s.sub.EXPECT().Close().Return(nil).Once()

	ticket := s.ticket
	ticket.Targets = nil
	log, err := s.wait(New(s.channel), ticket)

	s.Require().NoError(err)
	s.Empty(log)
}

func (s *ListenerTestSuite) TestClosedSubscription() {
	s.expectSubscription()
	close(s.events)

	_, err := s.wait(New(s.channel), s.ticket)

	s.ErrorIs(err, pilot.ErrChannelClosed)
}

func (s *ListenerTestSuite) TestContextCancel() {
	s.expectSubscription()
	l := New(s.channel, WithTimeout(0))

	w, err := l.Watch(context.Background(), "D")
	s.Require().NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = w.Wait(ctx, s.ticket)
	s.ErrorIs(err, context.Canceled)
	s.NoError(w.Close())
}

func (s *ListenerTestSuite) TestSubscribeError() {
	boom := errors.New("subscribe failed")
	s.channel.EXPECT().Subscribe(mock.Anything, "/D").Return(nil, boom).Once()

	_, err := New(s.channel).Watch(context.Background(), "D")

	s.ErrorIs(err, boom)
}

func (s *ListenerTestSuite) TestNewFromConfig() {
	cfg := config.Default()
	cfg.Notify.Event = "PROJECT_NOTIFICATION"
	cfg.NotifyTimeout = 3 * time.Second

	l := NewFromConfig(s.channel, cfg)
	s.Equal("PROJECT_NOTIFICATION", l.event)
	s.Equal(3*time.Second, l.timeout)

	l = NewFromConfig(s.channel, cfg, WithTimeout(time.Second))
	s.Equal(time.Second, l.timeout, "options override the configuration")
}

func (s *ListenerTestSuite) TestConfiguredEventFiltersNotifications() {
	s.expectSubscription()
	cfg := config.Default()
	cfg.Notify.Event = "PROJECT_NOTIFICATION"
	cfg.NotifyTimeout = 50 * time.Millisecond

	s.events <- finished("A", "S", pilot.ActionMove)
	s.events <- finished("B", "S", pilot.ActionMove)

	_, err := s.wait(NewFromConfig(s.channel, cfg), s.ticket)

	var timeoutErr *pilot.TimeoutError
	s.Require().ErrorAs(err, &timeoutErr)
	s.Equal([]string{"A", "B"}, timeoutErr.Pending)
}

func TestListener(t *testing.T) {
	suite.Run(t, new(ListenerTestSuite))
}

// RedisListenerTestSuite runs the listener against Redis pub/sub, including several
// trackers sharing one channel.
type RedisListenerTestSuite struct {
	suite.Suite
	rdb     *redis.Client
	channel *redischannel.Channel
}

func (s *RedisListenerTestSuite) SetupTest() {
	mr := miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.channel = redischannel.New(s.rdb, redischannel.WithPrefix("pilot"))
}

func (s *RedisListenerTestSuite) TearDownTest() {
	s.NoError(s.rdb.Close())
}

func (s *RedisListenerTestSuite) TestMoveScenario() {
	ctx := context.Background()
	l := New(s.channel, WithTimeout(5*time.Second))

	log, err := tracker.Await[[]pilot.Notification](ctx, l, "D", func(ctx context.Context) (tracker.Ticket, error) {
		go func() {
			_ = s.channel.Publish(ctx, "/D", finished("A", "S", pilot.ActionMove))
			_ = s.channel.Publish(ctx, "/D", finished("B", "S", pilot.ActionMove))
		}()
		return tracker.Ticket{SessionID: "S", Action: string(pilot.ActionMove), Targets: []string{"A", "B"}}, nil
	})

	s.Require().NoError(err)
	s.Require().Len(log, 2)
	s.Equal("A", log[0].SourceID())
	s.Equal("B", log[1].SourceID())
}

func (s *RedisListenerTestSuite) TestConcurrentTrackersShareChannel() {
	ctx := context.Background()
	l := New(s.channel, WithTimeout(5*time.Second))

	first, err := l.Watch(ctx, "D")
	s.Require().NoError(err)
	defer func() { s.NoError(first.Close()) }()
	second, err := l.Watch(ctx, "D")
	s.Require().NoError(err)
	defer func() { s.NoError(second.Close()) }()

	s.Require().NoError(s.channel.Publish(ctx, "/D", finished("A", "S1", pilot.ActionImport)))
	s.Require().NoError(s.channel.Publish(ctx, "/D", finished("B", "S2", pilot.ActionDelete)))

	type outcome struct {
		log []pilot.Notification
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		log, err := second.Wait(ctx, tracker.Ticket{SessionID: "S2", Action: string(pilot.ActionDelete), Targets: []string{"B"}})
		done <- outcome{log, err}
	}()

	log, err := first.Wait(ctx, tracker.Ticket{SessionID: "S1", Action: string(pilot.ActionImport), Targets: []string{"A"}})
	s.Require().NoError(err)
	s.Require().Len(log, 1)
	s.Equal("A", log[0].SourceID())

	res := <-done
	s.Require().NoError(res.err)
	s.Require().Len(res.log, 1)
	s.Equal("B", res.log[0].SourceID())
}

func TestRedisListener(t *testing.T) {
	suite.Run(t, new(RedisListenerTestSuite))
}
