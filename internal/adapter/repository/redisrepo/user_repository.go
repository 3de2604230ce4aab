package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/driveezzy/internal/core/domain"
)

type UserRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

// CreateUser claims the email key with SETNX before writing the account, so
// only one registration per email can win.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	claimed, err := r.client.SetNX(ctx, emailKey(user.Email), user.ID.String(), 0).Result()
	if err != nil {
		return fmt.Errorf("claim email: %w", err)
	}
	if !claimed {
		return domain.ErrDuplicateEmail
	}

	if err := r.client.HSet(ctx, userKey(user.ID), userFields(user)...).Err(); err != nil {
		writeErr := fmt.Errorf("write user: %w", err)
		// release the claim so the email can be registered again
		if delErr := r.client.Del(ctx, emailKey(user.Email)).Err(); delErr != nil {
			return errors.Join(writeErr, fmt.Errorf("release email claim %s: %w", emailKey(user.Email), delErr))
		}
		return writeErr
	}

	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	raw, err := r.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("decode email index: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	m, err := r.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(m) == 0 {
		return nil, domain.ErrNotFound
	}

	return decodeUser(m)
}
