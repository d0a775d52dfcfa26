package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "oic:agent:state"

// RedisStore persists the document as one Redis string value. Suited to
// fleets where multiple agent processes share correlation state.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
	key    string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg StoreConfig) (*RedisStore, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	key := cfg.RedisKey
	if key == "" {
		key = defaultRedisKey
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Read(ctx context.Context) (Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read state from redis: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt value reads as empty, same as the file backend.
		return Document{}, nil
	}
	return doc, nil
}

func (s *RedisStore) Merge(ctx context.Context, patch Patch) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Read(ctx)
	if err != nil {
		return Document{}, err
	}
	patch.apply(&doc)

	data, err := json.Marshal(doc)
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return Document{}, fmt.Errorf("failed to write state to redis: %w", err)
	}
	return doc, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
