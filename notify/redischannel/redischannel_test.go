package redischannel

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/config"
)

type RedisChannelTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	rdb     *redis.Client
	channel *Channel
}

func (s *RedisChannelTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.channel = New(s.rdb, WithPrefix("pilot"), WithBufferSize(4))
}

func (s *RedisChannelTestSuite) TearDownTest() {
	s.NoError(s.rdb.Close())
}

func notification(id string) pilot.Notification {
	n := pilot.Notification{Event: pilot.EventDatasetFileNotification}
	n.Payload.Source.GlobalEntityID = id
	n.Payload.SessionID = "alice-1"
	n.Payload.Status = pilot.StatusFinish
	n.Payload.Action = pilot.ActionMove
	return n
}

func (s *RedisChannelTestSuite) receive(sub interface {
	Notifications() <-chan pilot.Notification
}) pilot.Notification {
	select {
	case n, ok := <-sub.Notifications():
		s.Require().True(ok, "subscription closed early")
		return n
	case <-time.After(2 * time.Second):
		s.FailNow("no notification received")
	}
	return pilot.Notification{}
}

func (s *RedisChannelTestSuite) TestName() {
	s.Equal("pilot/abc", s.channel.Name("/abc"))
	s.Equal("pilot/abc", s.channel.Name("abc"))
	s.Equal("/abc", New(s.rdb).Name("abc"))
}

func (s *RedisChannelTestSuite) TestSubscribeAndPublish() {
	ctx := context.Background()
	sub, err := s.channel.Subscribe(ctx, "/dataset-1")
	s.Require().NoError(err)
	defer func() { s.NoError(sub.Close()) }()

	s.Require().NoError(s.channel.Publish(ctx, "/dataset-1", notification("file-1")))
	s.Equal("file-1", s.receive(sub).SourceID())

	// raw publishes from other producers are decoded the same way
	s.mr.Publish("pilot/dataset-1", `{"event":"DATASET_FILE_NOTIFICATION","payload":{"source":{"global_entity_id":"file-2"}}}`)
	s.Equal("file-2", s.receive(sub).SourceID())
}

func (s *RedisChannelTestSuite) TestNamespacesAreIsolated() {
	ctx := context.Background()
	sub, err := s.channel.Subscribe(ctx, "/dataset-1")
	s.Require().NoError(err)
	defer func() { s.NoError(sub.Close()) }()

	s.Require().NoError(s.channel.Publish(ctx, "/dataset-2", notification("other")))
	s.Require().NoError(s.channel.Publish(ctx, "/dataset-1", notification("mine")))
	s.Equal("mine", s.receive(sub).SourceID())
}

func (s *RedisChannelTestSuite) TestBroadcastToEverySubscriber() {
	ctx := context.Background()
	first, err := s.channel.Subscribe(ctx, "/dataset-1")
	s.Require().NoError(err)
	defer func() { s.NoError(first.Close()) }()
	second, err := s.channel.Subscribe(ctx, "/dataset-1")
	s.Require().NoError(err)
	defer func() { s.NoError(second.Close()) }()

	s.Require().NoError(s.channel.Publish(ctx, "/dataset-1", notification("file-1")))
	s.Equal("file-1", s.receive(first).SourceID())
	s.Equal("file-1", s.receive(second).SourceID())
}

func (s *RedisChannelTestSuite) TestUndecodableMessagesAreDropped() {
	ctx := context.Background()
	sub, err := s.channel.Subscribe(ctx, "/dataset-1")
	s.Require().NoError(err)
	defer func() { s.NoError(sub.Close()) }()

	s.mr.Publish("pilot/dataset-1", "garbage")
	s.Require().NoError(s.channel.Publish(ctx, "/dataset-1", notification("file-1")))
	s.Equal("file-1", s.receive(sub).SourceID())
}

func (s *RedisChannelTestSuite) TestCloseEndsDelivery() {
	sub, err := s.channel.Subscribe(context.Background(), "/dataset-1")
	s.Require().NoError(err)

	s.NoError(sub.Close())
	s.NoError(sub.Close(), "close is idempotent")

	_, ok := <-sub.Notifications()
	s.False(ok)
}

func (s *RedisChannelTestSuite) TestSubscribeError() {
	s.mr.Close()
	_, err := s.channel.Subscribe(context.Background(), "/dataset-1")
	s.Error(err)
}

func (s *RedisChannelTestSuite) TestNewFromConfig() {
	s.mr.RequireUserAuth("pilot", "pw")
	channel := NewFromConfig(config.Notify{
		Addr:     s.mr.Addr(),
		Username: "pilot",
		Password: "pw",
		DB:       2,
		Prefix:   "pilot",
	})
	defer func() { s.NoError(channel.Close()) }()
	s.Equal("pilot/dataset-1", channel.Name("dataset-1"))

	sub, err := channel.Subscribe(context.Background(), "/dataset-1")
	s.Require().NoError(err)
	defer func() { s.NoError(sub.Close()) }()

	s.Require().NoError(channel.Publish(context.Background(), "/dataset-1", notification("file-1")))
	s.Equal("file-1", s.receive(sub).SourceID())
}

func (s *RedisChannelTestSuite) TestNewFromConfigWrongPassword() {
	s.mr.RequireUserAuth("pilot", "pw")
	channel := NewFromConfig(config.Notify{Addr: s.mr.Addr(), Username: "pilot", Password: "nope"})
	defer func() { s.NoError(channel.Close()) }()

	_, err := channel.Subscribe(context.Background(), "/dataset-1")

	s.Error(err)
}

func (s *RedisChannelTestSuite) TestCloseLeavesCallerClientOpen() {
	s.NoError(s.channel.Close())
	s.NoError(s.rdb.Ping(context.Background()).Err())
}

func TestRedisChannel(t *testing.T) {
	suite.Run(t, new(RedisChannelTestSuite))
}
