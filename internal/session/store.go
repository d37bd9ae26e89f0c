package session

import "context"

// Store is the session API the auth middleware and handlers depend on
type Store interface {
	Record(ctx context.Context, userID, sessionID, ip string) (*Data, error)
	Get(ctx context.Context, sessionID string) (*Data, error)
	ListByUser(ctx context.Context, userID string) ([]Data, error)
	Revoke(ctx context.Context, userID, sessionID string) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

var _ Store = (*RedisStore)(nil)
