package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleTTL = 24 * time.Hour

// InviteThrottle suppresses duplicate invite deliveries backed by Redis.
// Key format: invite:<root_work_id>:<recipient>
type InviteThrottle struct {
	client *redis.Client
}

// NewInviteThrottle creates an InviteThrottle wrapping the given Redis client.
func NewInviteThrottle(client *redis.Client) *InviteThrottle {
	return &InviteThrottle{client: client}
}

// IsRecent reports whether an invite for this work and recipient was
// dispatched inside the throttle window.
func (t *InviteThrottle) IsRecent(ctx context.Context, rootWorkID, recipient string) (bool, error) {
	n, err := t.client.Exists(ctx, t.key(rootWorkID, recipient)).Result()
	if err != nil {
		return false, fmt.Errorf("invite throttle check: %w", err)
	}
	return n > 0, nil
}

// Mark records that an invite was dispatched (expires after throttleTTL).
func (t *InviteThrottle) Mark(ctx context.Context, rootWorkID, recipient string) error {
	return t.client.Set(ctx, t.key(rootWorkID, recipient), "1", throttleTTL).Err()
}

func (t *InviteThrottle) key(rootWorkID, recipient string) string {
	return fmt.Sprintf("invite:%s:%s", rootWorkID, recipient)
}
