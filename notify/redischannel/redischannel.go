// Package redischannel implements notify.Channel on Redis pub/sub.
//
// Namespaces map to Redis channels named <prefix><namespace>, so with the prefix "pilot"
// the notifications of dataset abc are published on "pilot/abc".
package redischannel

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/c2fo/pilot"
	"github.com/c2fo/pilot/config"
	"github.com/c2fo/pilot/logging"
	"github.com/c2fo/pilot/notify"
	"github.com/c2fo/pilot/utils"
)

// Client is the subset of redis.UniversalClient used by Channel.
type Client interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Channel shares one Redis client between all of its subscriptions. Each subscription
// owns its own PubSub connection and delivery queue.
type Channel struct {
	client     Client
	prefix     string
	bufferSize int
	logger     zerolog.Logger

	// owned is set when the Channel created its client.
	owned io.Closer
}

// Option is a functional option for configuring a Channel.
type Option func(*Channel)

// WithPrefix sets the prefix prepended to namespaces. Default is no prefix.
func WithPrefix(prefix string) Option {
	return func(c *Channel) {
		c.prefix = prefix
	}
}

// WithBufferSize sets the size of each subscription's queue. Default is 100.
func WithBufferSize(size int) Option {
	return func(c *Channel) {
		c.bufferSize = size
	}
}

// WithLogger sets the parent logger. Default is zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// New returns a Channel on client.
func New(client Client, opts ...Option) *Channel {
	c := &Channel{
		client:     client,
		bufferSize: 100,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bufferSize <= 0 {
		c.bufferSize = 1
	}
	c.logger = logging.Component(c.logger, "redischannel")
	return c
}

// NewFromConfig connects a Redis client with the address, credentials, database and
// prefix of cfg and returns a Channel owning it. opts are applied after the prefix.
func NewFromConfig(cfg config.Notify, opts ...Option) *Channel {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	c := New(rdb, append([]Option{WithPrefix(cfg.Prefix)}, opts...)...)
	c.owned = rdb
	return c
}

// Close closes the Redis client when the Channel was built by NewFromConfig. Channels
// built by New leave their client to the caller.
func (c *Channel) Close() error {
	if c.owned == nil {
		return nil
	}
	err := c.owned.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

// Name returns the Redis channel name of namespace.
func (c *Channel) Name(namespace string) string {
	return c.prefix + utils.EnsureLeadingSlash(namespace)
}

// Subscribe subscribes to namespace and waits for Redis to confirm the subscription.
func (c *Channel) Subscribe(ctx context.Context, namespace string) (notify.Subscription, error) {
	name := c.Name(namespace)
	ps := c.client.Subscribe(ctx, name)

	// the first reply is the subscription confirmation
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, utils.WrapSubscribeError(err)
	}

	sub := &subscription{
		ps:     ps,
		out:    make(chan pilot.Notification, c.bufferSize),
		done:   make(chan struct{}),
		logger: c.logger.With().Str("channel", name).Logger(),
	}
	sub.wg.Add(1)
	go sub.run(ps.Channel(redis.WithChannelSize(c.bufferSize)))

	c.logger.Debug().Str("channel", name).Msg("subscribed")
	return sub, nil
}

// Publish encodes n and publishes it on namespace.
func (c *Channel) Publish(ctx context.Context, namespace string, n pilot.Notification) error {
	data, err := notify.Encode(n)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, c.Name(namespace), data).Err()
}

type subscription struct {
	ps     *redis.PubSub
	out    chan pilot.Notification
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger zerolog.Logger
}

func (s *subscription) run(in <-chan *redis.Message) {
	defer s.wg.Done()
	defer close(s.out)

	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			n, err := notify.Decode([]byte(msg.Payload))
			if err != nil {
				s.logger.Warn().Err(err).Msg("dropping undecodable notification")
				continue
			}
			select {
			case s.out <- n:
			case <-s.done:
				return
			}
		}
	}
}

func (s *subscription) Notifications() <-chan pilot.Notification {
	return s.out
}

// Close unsubscribes and waits for the delivery goroutine to exit.
func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
		s.wg.Wait()
	})
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

var _ notify.Channel = (*Channel)(nil)
var _ notify.Publisher = (*Channel)(nil)
