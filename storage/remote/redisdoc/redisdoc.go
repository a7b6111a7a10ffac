// Package redisdoc stores slot documents in Redis: one hash per
// (tenant, slot) under "shule:{tenant}:{slot}", system documents under
// "shule:system:{key}".
package redisdoc

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/store"
)

const valueField = "value"

type Store struct {
	client *redis.Client
}

var _ store.RemoteStore = (*Store)(nil)

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Open connects and pings the Redis server configured in conf.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Sync.RedisAddr,
		Password: conf.Sync.RedisPassword,
		DB:       conf.Sync.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return New(client), nil
}

func slotKey(tenantID, slot string) string { return "shule:" + tenantID + ":" + slot }
func systemKey(key string) string          { return "shule:system:" + key }

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.HGet(ctx, key, valueField).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNoDocument
		}
		return nil, errors.Wrapf(err, "getting document %s", key)
	}
	return raw, nil
}

func (s *Store) set(ctx context.Context, key string, val []byte) error {
	return errors.Wrapf(s.client.HSet(ctx, key, valueField, val).Err(), "setting document %s", key)
}

func (s *Store) GetSlot(ctx context.Context, tenantID, slot string) ([]byte, error) {
	return s.get(ctx, slotKey(tenantID, slot))
}

func (s *Store) SetSlot(ctx context.Context, tenantID, slot string, val []byte) error {
	return s.set(ctx, slotKey(tenantID, slot), val)
}

func (s *Store) GetSystem(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, systemKey(key))
}

func (s *Store) SetSystem(ctx context.Context, key string, val []byte) error {
	return s.set(ctx, systemKey(key), val)
}

func (s *Store) Close() error { return s.client.Close() }
