// Package redis stores save data and the activity backlog in Redis and fans
// game events out over Redis channels, so several server processes can
// share one game's stream.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

const dialTimeout = 5 * time.Second

// Config holds Redis connection settings. Addr may also be a redis:// URL,
// in which case Password and DB are taken from it.
type Config struct {
	Addr     string
	Password string
	DB       int
}

func (cfg Config) options() (*goredis.Options, error) {
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		opt, err := goredis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
		return opt, nil
	}
	return &goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	}, nil
}

func dial(cfg Config) (*goredis.Client, error) {
	opt, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opt.Addr, err)
	}
	return client, nil
}

// Store is the Redis-backed cache used for save slots and the log backlog.
type Store struct {
	client *goredis.Client
}

// NewCache connects to Redis and verifies the connection.
func NewCache(cfg Config) (*Store, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.client.Close() }

// ---- KV ----

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

// Set writes value; a zero ttl keeps it forever, which is what save slots use.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ---- List ----

func (s *Store) LPush(ctx context.Context, key string, values ...string) error {
	return s.client.LPush(ctx, key, toArgs(values)...).Err()
}

func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return s.client.LRange(ctx, key, start, stop).Result()
}

func (s *Store) LTrim(ctx context.Context, key string, start, stop int64) error {
	return s.client.LTrim(ctx, key, start, stop).Err()
}

// PushCapped prepends value and trims the list to max entries in one
// MULTI/EXEC, so readers never see the list over its cap.
func (s *Store) PushCapped(ctx context.Context, key, value string, max int64) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, key, value)
		pipe.LTrim(ctx, key, 0, max-1)
		return nil
	})
	return err
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// ---- PubSub ----

// Message is a message received from a Redis channel.
type Message struct {
	Channel string
	Payload string
}

// PubSub publishes game events on Redis channels.
type PubSub struct {
	client *goredis.Client
}

// NewPubSub connects a publish/subscribe client.
func NewPubSub(cfg Config) (*PubSub, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &PubSub{client: client}, nil
}

func (p *PubSub) Publish(ctx context.Context, channel, message string) error {
	return p.client.Publish(ctx, channel, message).Err()
}

// Subscribe returns once Redis has confirmed the subscription, so nothing
// published after it returns is missed. The returned func unsubscribes and
// closes the channel.
func (p *PubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	ps := p.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis: subscribe: %w", err)
	}
	ch := make(chan *Message, 256)

	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			ch <- &Message{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()

	return ch, func() { _ = ps.Close() }, nil
}
