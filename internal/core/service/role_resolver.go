package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// StoreRoleResolver reads the role straight from the credential store on every call.
type StoreRoleResolver struct {
	repo ports.UserRepository
}

func NewStoreRoleResolver(repo ports.UserRepository) *StoreRoleResolver {
	return &StoreRoleResolver{repo: repo}
}

// CurrentRole wraps a missing user in domain.ErrIdentityNotFound and any other
// store failure in domain.ErrStoreUnavailable.
func (r *StoreRoleResolver) CurrentRole(ctx context.Context, subjectID string) (domain.Role, error) {
	user, err := r.repo.FindByID(ctx, subjectID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("%w: %w", domain.ErrIdentityNotFound, err)
	case err != nil:
		return "", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return user.Role, nil
}

// CachedRoleResolver serves roles from a cache for at most ttl before going
// back to the store. Entries for a user are dropped as soon as an admin edits
// or deletes that user, so only changes made outside the API can be served stale.
type CachedRoleResolver struct {
	next   ports.RoleResolver
	cache  ports.RoleCache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedRoleResolver returns next unchanged when ttl is not positive.
func NewCachedRoleResolver(next ports.RoleResolver, cache ports.RoleCache, ttl time.Duration, logger zerolog.Logger) ports.RoleResolver {
	if ttl <= 0 || cache == nil {
		return next
	}
	return &CachedRoleResolver{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedRoleResolver) CurrentRole(ctx context.Context, subjectID string) (domain.Role, error) {
	role, ok, err := r.cache.Get(ctx, subjectID)
	if err != nil {
		r.logger.Warn().Err(err).Str("subject_id", subjectID).Msg("role cache read failed, falling back to store")
	} else if ok {
		return role, nil
	}

	role, err = r.next.CurrentRole(ctx, subjectID)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, subjectID, role, r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("subject_id", subjectID).Msg("role cache write failed")
	}
	return role, nil
}
