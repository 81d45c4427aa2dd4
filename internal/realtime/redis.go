package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient creates a Redis client and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisBroadcaster publishes on one Redis channel per user so every server
// instance can deliver to the sockets it holds.
type RedisBroadcaster struct {
	client *redis.Client
	prefix string
}

func NewRedisBroadcaster(client *redis.Client, prefix string) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, prefix: prefix}
}

func (b *RedisBroadcaster) channel(userID string) string {
	return b.prefix + ":" + userID
}

func (b *RedisBroadcaster) Publish(ctx context.Context, userID string, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel(userID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, userID string) (<-chan []byte, func(), error) {
	ps := b.client.Subscribe(ctx, b.channel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe failed: %w", err)
	}

	out := make(chan []byte, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					logrus.WithField("user_id", userID).Warn("Dropping notification for slow subscriber")
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := ps.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close redis subscription")
			}
		})
	}
	return out, cancel, nil
}

func (b *RedisBroadcaster) Close() error {
	return b.client.Close()
}
