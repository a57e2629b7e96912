package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager is the authority for session-to-partition mapping in redis
// mode: it owns the persisted session records and the per-user index of
// session IDs. A session is only ever visible under the user ID it was
// created with; no cross-user lookup path exists.
type SessionManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionManager returns a manager storing sessions under the given key
// prefix. ttl of zero disables expiry.
func NewSessionManager(client *redis.Client, prefix string, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, prefix: prefix, ttl: ttl}
}

// CreateOrUpdateSession upserts a session record. When sessionID is empty a
// new unique ID is generated. The full record is always rewritten with a
// refreshed LastAccessed, and the ID is added to the user's session set, so
// repeated calls with the same (userID, sessionID) refresh timestamps and
// overwrite the repository context.
func (m *SessionManager) CreateOrUpdateSession(ctx context.Context, userID, sessionID string, repo RepositoryContext) (*SessionContext, error) {
	now := time.Now().UTC()

	session := SessionContext{
		SessionID:    sessionID,
		UserID:       userID,
		Repository:   repo,
		CreatedAt:    now,
		LastAccessed: now,
	}
	if session.SessionID == "" {
		session.SessionID = uuid.NewString()
	} else if existing, err := m.GetSessionByIDs(ctx, userID, session.SessionID); err == nil && existing != nil {
		session.CreatedAt = existing.CreatedAt
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(m.prefix, userID, session.SessionID)
	if err := m.client.Set(ctx, key, raw, m.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to write session %s: %w", key, err)
	}

	setKey := userSessionsKey(m.prefix, userID)
	if err := m.client.SAdd(ctx, setKey, session.SessionID).Err(); err != nil {
		return nil, fmt.Errorf("failed to index session %s: %w", session.SessionID, err)
	}
	if m.ttl > 0 {
		if err := m.client.Expire(ctx, setKey, m.ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to refresh session index expiry: %w", err)
		}
	}

	return &session, nil
}

// GetSessionByIDs returns the session record for (userID, sessionID), or nil
// if absent.
func (m *SessionManager) GetSessionByIDs(ctx context.Context, userID, sessionID string) (*SessionContext, error) {
	raw, err := m.client.Get(ctx, sessionKey(m.prefix, userID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}

	var session SessionContext
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("malformed session record %s: %w", sessionID, err)
	}
	return &session, nil
}

// GetUserSessions returns every resolvable session belonging to userID.
// Session IDs in the index whose records are missing or unreadable are
// skipped, tolerating partially expired data.
func (m *SessionManager) GetUserSessions(ctx context.Context, userID string) ([]SessionContext, error) {
	ids, err := m.client.SMembers(ctx, userSessionsKey(m.prefix, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for user %s: %w", userID, err)
	}

	sessions := make([]SessionContext, 0, len(ids))
	for _, id := range ids {
		session, err := m.GetSessionByIDs(ctx, userID, id)
		if err != nil || session == nil {
			continue
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// FindSession scans the user's sessions for a repository+branch match. The
// first match in storage iteration order wins; no further ordering is
// guaranteed. Returns nil when no session matches.
func (m *SessionManager) FindSession(ctx context.Context, userID, repository, branch string) (*SessionContext, error) {
	sessions, err := m.GetUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Repository.Repository == repository && sessions[i].Repository.Branch == branch {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// DeleteSession removes the session record and its membership in the user's
// session set.
func (m *SessionManager) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := m.client.Del(ctx, sessionKey(m.prefix, userID, sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	if err := m.client.SRem(ctx, userSessionsKey(m.prefix, userID), sessionID).Err(); err != nil {
		return fmt.Errorf("failed to unindex session %s: %w", sessionID, err)
	}
	return nil
}
