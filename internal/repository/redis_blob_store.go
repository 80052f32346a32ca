package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
)

// ErrBlobNotFound is returned by BlobStore.Get for an unknown key.
var ErrBlobNotFound = errors.New("blob: key not found")

// RedisBlobStoreConfig holds connection settings for the Redis blob store.
type RedisBlobStoreConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// RedisBlobStore keeps raw payload snapshots and training artifacts in Redis.
// Keys are namespaced under the configured prefix.
type RedisBlobStore struct {
	client *redis.Client
	prefix string
}

// NewRedisBlobStore connects to Redis and verifies the connection.
func NewRedisBlobStore(cfg RedisBlobStoreConfig) (*RedisBlobStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "bm"
	}
	return &RedisBlobStore{client: client, prefix: prefix}, nil
}

func (s *RedisBlobStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("blob put %s: %w", key, err)
	}
	return nil
}

func (s *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := s.key(prefix) + "*"
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix+":"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("blob list %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the underlying Redis connection.
func (s *RedisBlobStore) Close() error {
	return s.client.Close()
}

var _ domrepo.BlobStore = (*RedisBlobStore)(nil)
