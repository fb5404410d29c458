package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// UserService implements admin-side account management.
type UserService struct {
	repo   ports.UserRepository
	hasher PasswordHasher
	cache  ports.RoleCache // optional
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher PasswordHasher, cache ports.RoleCache, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, cache: cache, logger: logger}
}

// ListUsers returns every non-admin account.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.ListExcludingRole(ctx, domain.RoleAdmin)
}

func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" || input.Role == "" {
		return nil, domain.ErrMissingFields
	}
	if !input.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created by admin")
	return created, nil
}

// UpdateUser applies a partial update. A new password is hashed before storage,
// and any cached role for the user is dropped so the next admin check re-reads it.
func (s *UserService) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	if upd.Role != nil && !upd.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if upd.Username != nil {
		trimmed := strings.TrimSpace(*upd.Username)
		if trimmed == "" {
			return nil, domain.ErrMissingFields
		}
		upd.Username = &trimmed
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, domain.ErrMissingFields
		}
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
		upd.PasswordHash = &hash
		upd.Password = nil
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.invalidateRole(ctx, id)
	s.logger.Info().Str("user_id", id).Msg("user updated by admin")
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateRole(ctx, id)
	s.logger.Info().Str("user_id", id).Msg("user deleted by admin")
	return nil
}

func (s *UserService) invalidateRole(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		// Entry still expires after the configured TTL.
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to invalidate cached role")
	}
}
