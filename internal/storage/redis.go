package storage

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisMaxRetries is the fixed retry budget applied to every command. There
// is no application-level timeout beyond this; slow commands run to
// completion or to a connection error.
const redisMaxRetries = 3

// NewRedisClient builds a client for the shared key-value store from a
// connection URL (redis://[user:pass@]host:port/db). The caller owns the
// client and shares it between the partition backends and the session
// manager.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.MaxRetries = redisMaxRetries
	return redis.NewClient(opt), nil
}

// partitionKey builds the composite key addressing one (user, repository,
// branch) partition document.
func partitionKey(prefix, userID, repoID, branch string) string {
	return fmt.Sprintf("%suser:%s:repo:%s:branch:%s", prefix, userID, repoID, branch)
}

// sessionKey addresses one persisted session record.
func sessionKey(prefix, userID, sessionID string) string {
	return fmt.Sprintf("%ssession:%s:%s", prefix, userID, sessionID)
}

// userSessionsKey addresses the per-user set of session IDs.
func userSessionsKey(prefix, userID string) string {
	return fmt.Sprintf("%suser:%s:sessions", prefix, userID)
}
