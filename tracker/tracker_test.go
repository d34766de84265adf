package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type fakeWatch struct {
	events *[]string
	result string
	err    error
	got    Ticket
}

func (w *fakeWatch) Wait(_ context.Context, t Ticket) (string, error) {
	*w.events = append(*w.events, "wait")
	w.got = t
	return w.result, w.err
}

func (w *fakeWatch) Close() error {
	*w.events = append(*w.events, "close")
	return nil
}

type AwaitTestSuite struct {
	suite.Suite
	events []string
	watch  *fakeWatch
	tr     Tracker[string]
}

func (s *AwaitTestSuite) SetupTest() {
	s.events = nil
	s.watch = &fakeWatch{events: &s.events, result: "done"}
	s.tr = TrackerFunc[string](func(_ context.Context, scope string) (Watch[string], error) {
		s.events = append(s.events, "watch:"+scope)
		return s.watch, nil
	})
}

func (s *AwaitTestSuite) TestWatchesBeforeDispatch() {
	ticket := Ticket{SessionID: "S", Action: "dataset_file_move", Targets: []string{"a", "b"}}

	res, err := Await(context.Background(), s.tr, "/D", func(context.Context) (Ticket, error) {
		s.events = append(s.events, "dispatch")
		return ticket, nil
	})

	s.Require().NoError(err)
	s.Equal("done", res)
	s.Equal([]string{"watch:/D", "dispatch", "wait", "close"}, s.events)
	s.Equal(ticket, s.watch.got)
}

func (s *AwaitTestSuite) TestDispatchErrorClosesWatch() {
	boom := errors.New("boom")

	_, err := Await(context.Background(), s.tr, "P", func(context.Context) (Ticket, error) {
		return Ticket{}, boom
	})

	s.ErrorIs(err, boom)
	s.Equal([]string{"watch:P", "close"}, s.events)
}

func (s *AwaitTestSuite) TestWaitErrorIsReturned() {
	boom := errors.New("timed out")
	s.watch.err = boom

	_, err := Await(context.Background(), s.tr, "P", func(context.Context) (Ticket, error) {
		return Ticket{SessionID: "S"}, nil
	})

	s.ErrorIs(err, boom)
	s.Equal([]string{"watch:P", "wait", "close"}, s.events)
}

func (s *AwaitTestSuite) TestWatchErrorSkipsDispatch() {
	boom := errors.New("subscribe failed")
	tr := TrackerFunc[string](func(context.Context, string) (Watch[string], error) {
		return nil, boom
	})

	dispatched := false
	_, err := Await(context.Background(), tr, "P", func(context.Context) (Ticket, error) {
		dispatched = true
		return Ticket{}, nil
	})

	s.ErrorIs(err, boom)
	s.False(dispatched)
}

func TestAwait(t *testing.T) {
	suite.Run(t, new(AwaitTestSuite))
}
