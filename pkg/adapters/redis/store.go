package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/syllabus/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "syllabus:draft:"

// indexSuffix names the sorted set under the prefix. No draft may use it as an id.
const indexSuffix = "index"

// farFuture is the index score of drafts without expiration (2100-01-01).
const farFuture = 4102444800

// Store implements ports.DraftStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for drafts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for drafts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so a Locker can share the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(draftID string) (string, error) {
	if draftID == "" {
		return "", fmt.Errorf("draftID cannot be empty")
	}
	if draftID == indexSuffix {
		return "", fmt.Errorf("invalid draftID %q: reserved", draftID)
	}
	return s.prefix + draftID, nil
}

func (s *Store) indexKey() string {
	return s.prefix + indexSuffix
}

// Save persists the draft and indexes it in a sorted set scored by expiry.
func (s *Store) Save(ctx context.Context, draftID string, draft *domain.Draft) error {
	key, err := s.key(draftID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: draftID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the draft from Redis.
func (s *Store) Load(ctx context.Context, draftID string) (*domain.Draft, error) {
	key, err := s.key(draftID)
	if err != nil {
		return nil, err
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var draft domain.Draft
	if err := json.Unmarshal(val, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}

	return &draft, nil
}

// Delete removes the draft and its index entry.
func (s *Store) Delete(ctx context.Context, draftID string) error {
	key, err := s.key(draftID)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()

	pipe.Del(ctx, key)
	pipe.ZRem(ctx, s.indexKey(), draftID)

	_, err = pipe.Exec(ctx)
	return err
}

// List returns live drafts. Expired index entries are pruned lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired drafts: %w", err)
	}

	drafts, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	return drafts, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
