package repository

import (
	"PayIVR/entity"
	"PayIVR/internal/lib/sl"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sync maps as plain keys "<service>:<map>:<key>" with the
// map names registered in the set "<service>:maps".
type RedisStore struct {
	client  *redis.Client
	service string
	log     *slog.Logger
}

func NewRedisStore(client *redis.Client, service string, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client:  client,
		service: service,
		log:     logger.With(sl.Module("redis")),
	}
}

func (s *RedisStore) mapsKey() string {
	return s.service + ":maps"
}

func (s *RedisStore) itemKey(mapName, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.service, mapName, key)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) MapExists(ctx context.Context, name string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.mapsKey(), name).Result()
	if err != nil {
		return false, fmt.Errorf("redis map exists: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) EnsureMap(ctx context.Context, name string) error {
	added, err := s.client.SAdd(ctx, s.mapsKey(), name).Result()
	if err != nil {
		return fmt.Errorf("redis ensure map: %w", err)
	}
	if added > 0 {
		s.log.Info("sync map created", slog.String("map", name))
	}
	return nil
}

func (s *RedisStore) GetItem(ctx context.Context, mapName, key string) (*entity.SyncItem, error) {
	data, err := s.client.Get(ctx, s.itemKey(mapName, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return &entity.SyncItem{Map: mapName, Key: key, Data: data}, nil
}

func (s *RedisStore) CreateItem(ctx context.Context, mapName, key string, data any, ttl time.Duration) (*entity.SyncItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	err = s.client.SetArgs(ctx, s.itemKey(mapName, key), raw, redis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrItemExists
		}
		return nil, fmt.Errorf("redis create: %w", err)
	}
	return &entity.SyncItem{Map: mapName, Key: key, Data: raw}, nil
}

func (s *RedisStore) UpdateItem(ctx context.Context, item *entity.SyncItem, data any) (*entity.SyncItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	err = s.client.SetArgs(ctx, s.itemKey(item.Map, item.Key), raw, redis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("redis update: %w", err)
	}
	return &entity.SyncItem{Map: item.Map, Key: item.Key, Data: raw, Revision: item.Revision + 1}, nil
}

func (s *RedisStore) DeleteItem(ctx context.Context, item *entity.SyncItem) error {
	n, err := s.client.Del(ctx, s.itemKey(item.Map, item.Key)).Result()
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}
