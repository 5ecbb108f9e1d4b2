package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in Redis and publishes every write on a change
// channel so other sessions sharing the prefix can converge.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	origin   string
	maxBytes int
}

var _ Store = (*RedisStore)(nil)

type changeEnvelope struct {
	Origin  string `json:"origin"`
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// NewRedisStore creates a store whose writes are attributed to origin.
// Values larger than maxBytes are rejected with ErrQuotaExceeded; zero
// disables the limit.
func NewRedisStore(client *redis.Client, prefix, origin string, maxBytes int) *RedisStore {
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		origin:   origin,
		maxBytes: maxBytes,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.dataKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if s.maxBytes > 0 && len(value) > s.maxBytes {
		return ErrQuotaExceeded
	}
	payload, err := json.Marshal(changeEnvelope{Origin: s.origin, Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.dataKey(key), value, 0)
	pipe.Publish(ctx, s.channel(), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	payload, err := json.Marshal(changeEnvelope{Origin: s.origin, Key: key, Deleted: true})
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.dataKey(key))
	pipe.Publish(ctx, s.channel(), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Watch(ctx context.Context, key string, fn func(Change)) (func(), error) {
	ps := s.client.Subscribe(ctx, s.channel())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	d := newDispatcher(fn)
	go func() {
		for msg := range ps.Channel() {
			var env changeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Origin == s.origin || env.Key != key {
				continue
			}
			d.push(Change{Key: env.Key, Value: env.Value, Deleted: env.Deleted})
		}
	}()

	return func() {
		_ = ps.Close()
		d.stop()
	}, nil
}

func (s *RedisStore) dataKey(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) channel() string {
	return s.prefix + ":changes"
}
