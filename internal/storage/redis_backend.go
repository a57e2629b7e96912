package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps one partition document as a single JSON value in the
// shared key-value store, addressed by the composite (user, repository,
// branch) key. Documents are created lazily on first write; Init is a
// no-op. Every Store replaces the value whole and re-applies the configured
// expiry, so an actively used partition never expires.
type redisStore struct {
	client *redis.Client
	key    string
	branch string
	ttl    time.Duration
}

// NewRedisBackend returns a Backend persisting the (userID, repoID, branch)
// partition in the shared store. Goals created through it are stamped with
// repoID and branch, since the key alone does not describe the document from
// the inside. ttl of zero disables expiry.
func NewRedisBackend(client *redis.Client, prefix, userID, repoID, branch string, ttl time.Duration) *DocumentBackend {
	store := &redisStore{
		client: client,
		key:    partitionKey(prefix, userID, repoID, branch),
		branch: branch,
		ttl:    ttl,
	}
	return NewDocumentBackend(store, repoID, branch)
}

func (s *redisStore) Init(ctx context.Context) error {
	return nil
}

// Load fetches the current document, synthesizing an empty skeleton when the
// key is absent. A value that exists but fails to parse is an error, not a
// fresh start: silently resetting a shared partition would destroy data
// other callers can still see.
func (s *redisStore) Load(ctx context.Context) (*StorageData, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewStorageData(s.branch, ""), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", s.key, err)
	}

	var data StorageData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("malformed partition document at %s: %w", s.key, err)
	}
	data.normalize()
	return &data, nil
}

func (s *redisStore) Store(ctx context.Context, data *StorageData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal partition document: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write partition %s: %w", s.key, err)
	}
	return nil
}
