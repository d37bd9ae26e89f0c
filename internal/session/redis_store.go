// Package session keeps a bounded set of login sessions per user in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"seriatim/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an idle session is kept
const DefaultTTL = 30 * 24 * time.Hour

// Data is what is stored for each session
type Data struct {
	IP            string    `json:"ip"`
	SessionID     string    `json:"session_id"`
	TimeCreated   time.Time `json:"time_created"`
	TimeLastLogin time.Time `json:"time_last_login"`
	UserID        string    `json:"user_id"`
}

// RedisStore stores sessions under session:<id>, indexes them in the set
// user_sessions:<user id>, and marks revoked ids with revoked:<id>.
type RedisStore struct {
	client *redis.Client
	prefix string
	keep   int
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a new Redis-backed session store. keep bounds the
// sessions per user; 0 disables trimming.
func NewRedisStore(redisURL string, keep int) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, keep), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, keep int) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "seriatim:",
		keep:   keep,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + "user_sessions:" + userID
}

func (s *RedisStore) revokedKey(sessionID string) string {
	return s.prefix + "revoked:" + sessionID
}

// Record creates the session or refreshes its last login time, then trims
// the user's oldest sessions beyond the configured bound.
func (s *RedisStore) Record(ctx context.Context, userID, sessionID, ip string) (*Data, error) {
	now := s.now()

	data, err := s.Get(ctx, sessionID)
	switch {
	case err == nil && data.UserID != userID:
		return nil, fmt.Errorf("session %s belongs to another user: %w", sessionID, domain.ErrForbidden)
	case err == nil:
		data.TimeLastLogin = now
		data.IP = ip
	case errors.Is(err, domain.ErrNotFound):
		data = &Data{
			IP:            ip,
			SessionID:     sessionID,
			TimeCreated:   now,
			TimeLastLogin: now,
			UserID:        userID,
		}
	default:
		return nil, err
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal session data: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(sessionID), jsonData, s.ttl)
		pipe.SAdd(ctx, s.userKey(userID), sessionID)
		pipe.Expire(ctx, s.userKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if err := s.TrimOldest(ctx, userID, s.keep); err != nil {
		return nil, err
	}
	return data, nil
}

// Get loads one session
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Data, error) {
	jsonData, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var data Data
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return nil, fmt.Errorf("unmarshal session data: %w", err)
	}
	return &data, nil
}

// ListByUser returns the user's live sessions, most recent login first.
// Index entries whose session has expired are dropped.
func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]Data, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]Data, 0, len(ids))
	var stale []interface{}
	for _, id := range ids {
		data, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *data)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.userKey(userID), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune session index: %w", err)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].TimeLastLogin.After(sessions[j].TimeLastLogin)
	})
	return sessions, nil
}

// TrimOldest revokes all but the keep most recently used sessions
func (s *RedisStore) TrimOldest(ctx context.Context, userID string, keep int) error {
	if keep <= 0 {
		return nil
	}

	sessions, err := s.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(sessions) <= keep {
		return nil
	}

	for _, old := range sessions[keep:] {
		if err := s.revoke(ctx, userID, old.SessionID); err != nil {
			return err
		}
	}
	return nil
}

// Revoke ends one of the user's sessions. The id stays marked revoked until
// it would have expired, so a token carrying it is refused.
func (s *RedisStore) Revoke(ctx context.Context, userID, sessionID string) error {
	data, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if data.UserID != userID {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return s.revoke(ctx, userID, sessionID)
}

func (s *RedisStore) revoke(ctx context.Context, userID, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(sessionID))
		pipe.SRem(ctx, s.userKey(userID), sessionID)
		pipe.Set(ctx, s.revokedKey(sessionID), userID, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether the session was revoked or trimmed
func (s *RedisStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.revokedKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
