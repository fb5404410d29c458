package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// RoleCache stores resolved user roles in Redis.
// Key format: role:<user_id>
type RoleCache struct {
	client redis.Cmdable
}

// NewRoleCache creates a RoleCache wrapping the given Redis client.
func NewRoleCache(client redis.Cmdable) *RoleCache {
	return &RoleCache{client: client}
}

// Get returns the cached role. A missing key, or one holding a value that is
// not a known role, is reported as a miss.
func (c *RoleCache) Get(ctx context.Context, userID string) (domain.Role, bool, error) {
	v, err := c.client.Get(ctx, roleKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("role cache get: %w", err)
	}

	role := domain.Role(v)
	if !role.Valid() {
		return "", false, nil
	}
	return role, true, nil
}

// Set records role for userID, expiring after ttl.
func (c *RoleCache) Set(ctx context.Context, userID string, role domain.Role, ttl time.Duration) error {
	if err := c.client.Set(ctx, roleKey(userID), string(role), ttl).Err(); err != nil {
		return fmt.Errorf("role cache set: %w", err)
	}
	return nil
}

// Invalidate drops any cached role for userID.
func (c *RoleCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, roleKey(userID)).Err(); err != nil {
		return fmt.Errorf("role cache invalidate: %w", err)
	}
	return nil
}

func roleKey(userID string) string {
	return "role:" + userID
}
