package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusMirror publishes online/offline status to Redis so other services
// (user directory, notification workers) can read presence without holding a
// connection handle. Mirroring is best-effort and nil-safe: a nil mirror or
// failed write never affects delivery.
type StatusMirror struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStatusMirror(client *redis.Client, prefix string, ttl time.Duration) *StatusMirror {
	return &StatusMirror{client: client, prefix: prefix, ttl: ttl}
}

func (s *StatusMirror) key(userID string) string {
	return fmt.Sprintf("%s:presence:%s", s.prefix, userID)
}

func (s *StatusMirror) SetOnline(ctx context.Context, userID string) {
	if s == nil {
		return
	}
	s.set(ctx, userID, "online", s.ttl)
}

func (s *StatusMirror) SetOffline(ctx context.Context, userID string) {
	if s == nil {
		return
	}
	s.set(ctx, userID, "offline", 0)
}

func (s *StatusMirror) set(ctx context.Context, userID, status string, ttl time.Duration) {
	if s.client == nil {
		return
	}
	b, _ := json.Marshal(map[string]any{"status": status, "last_seen": time.Now().Unix()})
	_ = s.client.Set(ctx, s.key(userID), b, ttl).Err()
}
