package repository

import (
	"PayIVR/entity"
	"PayIVR/internal/lib/sl"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsStore keeps every sync map in its own JetStream KV bucket. Item expiry
// is the bucket TTL, so the ttl passed to CreateItem is only used when the
// bucket has to be created on the fly.
type NatsStore struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	service string
	ttl     time.Duration
	mu      sync.Mutex
	buckets map[string]jetstream.KeyValue
	log     *slog.Logger
}

func NewNatsStore(url, service string, ttl time.Duration, logger *slog.Logger) (*NatsStore, error) {
	conn, err := nats.Connect(url, nats.Name(service))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &NatsStore{
		conn:    conn,
		js:      js,
		service: service,
		ttl:     ttl,
		buckets: make(map[string]jetstream.KeyValue),
		log:     logger.With(sl.Module("nats-kv")),
	}, nil
}

func (s *NatsStore) Close() {
	s.conn.Close()
}

// bucketName maps "<service>" and "<map>" to a valid bucket name.
func (s *NatsStore) bucketName(mapName string) string {
	name := s.service + "_" + mapName
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
}

func (s *NatsStore) bucket(ctx context.Context, mapName string, create bool) (jetstream.KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kv, ok := s.buckets[mapName]; ok {
		return kv, nil
	}

	name := s.bucketName(mapName)
	kv, err := s.js.KeyValue(ctx, name)
	if errors.Is(err, jetstream.ErrBucketNotFound) && create {
		kv, err = s.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:  name,
			History: 1,
			TTL:     s.ttl,
		})
		if err == nil {
			s.log.Info("sync map created", slog.String("bucket", name))
		}
	}
	if err != nil {
		return nil, err
	}
	s.buckets[mapName] = kv
	return kv, nil
}

func (s *NatsStore) Ping(_ context.Context) error {
	if !s.conn.IsConnected() {
		return fmt.Errorf("nats: %s", s.conn.Status())
	}
	return nil
}

func (s *NatsStore) MapExists(ctx context.Context, name string) (bool, error) {
	_, err := s.bucket(ctx, name, false)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv map exists: %w", err)
	}
	return true, nil
}

func (s *NatsStore) EnsureMap(ctx context.Context, name string) error {
	if _, err := s.bucket(ctx, name, true); err != nil {
		return fmt.Errorf("kv ensure map: %w", err)
	}
	return nil
}

func (s *NatsStore) GetItem(ctx context.Context, mapName, key string) (*entity.SyncItem, error) {
	kv, err := s.bucket(ctx, mapName, true)
	if err != nil {
		return nil, fmt.Errorf("kv bucket: %w", err)
	}
	entry, err := kv.Get(ctx, key)
	if err != nil {
		if isKeyMissing(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return &entity.SyncItem{Map: mapName, Key: key, Data: entry.Value(), Revision: entry.Revision()}, nil
}

func (s *NatsStore) CreateItem(ctx context.Context, mapName, key string, data any, _ time.Duration) (*entity.SyncItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	kv, err := s.bucket(ctx, mapName, true)
	if err != nil {
		return nil, fmt.Errorf("kv bucket: %w", err)
	}
	rev, err := kv.Create(ctx, key, raw)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return nil, ErrItemExists
		}
		return nil, fmt.Errorf("kv create %s: %w", key, err)
	}
	return &entity.SyncItem{Map: mapName, Key: key, Data: raw, Revision: rev}, nil
}

// UpdateItem is a compare-and-set on the item's revision.
func (s *NatsStore) UpdateItem(ctx context.Context, item *entity.SyncItem, data any) (*entity.SyncItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	kv, err := s.bucket(ctx, item.Map, true)
	if err != nil {
		return nil, fmt.Errorf("kv bucket: %w", err)
	}
	rev, err := kv.Update(ctx, item.Key, raw, item.Revision)
	if err != nil {
		return nil, fmt.Errorf("kv update %s at revision %d: %w", item.Key, item.Revision, err)
	}
	return &entity.SyncItem{Map: item.Map, Key: item.Key, Data: raw, Revision: rev}, nil
}

func (s *NatsStore) DeleteItem(ctx context.Context, item *entity.SyncItem) error {
	kv, err := s.bucket(ctx, item.Map, true)
	if err != nil {
		return fmt.Errorf("kv bucket: %w", err)
	}
	if err = kv.Delete(ctx, item.Key); err != nil {
		if isKeyMissing(err) {
			return ErrItemNotFound
		}
		return fmt.Errorf("kv delete %s: %w", item.Key, err)
	}
	return nil
}

func isKeyMissing(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
