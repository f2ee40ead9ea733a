package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const minReplayTTL = time.Minute

// ReplayGuard remembers upstream token ids so each assertion logs in once.
// Key format: replay:<registration_id>:<token_id>
type ReplayGuard struct {
	client *redis.Client
}

// NewReplayGuard creates a ReplayGuard wrapping the given Redis client.
func NewReplayGuard(client *redis.Client) *ReplayGuard {
	return &ReplayGuard{client: client}
}

// Claim marks tokenID as used until ttl elapses. It returns false when the
// token had already been claimed.
func (g *ReplayGuard) Claim(ctx context.Context, registrationID, tokenID string, ttl time.Duration) (bool, error) {
	if ttl < minReplayTTL {
		ttl = minReplayTTL
	}
	ok, err := g.client.SetNX(ctx, replayKey(registrationID, tokenID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay claim: %w", err)
	}
	return ok, nil
}

func replayKey(registrationID, tokenID string) string {
	return fmt.Sprintf("replay:%s:%s", registrationID, tokenID)
}
