package boltrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/srgjo27/driveezzy/internal/core/domain"
)

type userRecord struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	MobileNumber string    `json:"mobile_number"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserRepository struct {
	db *bolt.DB
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{db: s.db}
}

// CreateUser checks the email index and writes both buckets in one
// read-write transaction. Bolt serialises writers, so the check cannot race.
func (r *UserRepository) CreateUser(_ context.Context, user *domain.User) error {
	data, err := json.Marshal(userRecord(*user))
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		byEmail := tx.Bucket(usersByEmailBucket)
		if byEmail.Get([]byte(user.Email)) != nil {
			return domain.ErrDuplicateEmail
		}

		if err := tx.Bucket(usersBucket).Put(user.ID[:], data); err != nil {
			return fmt.Errorf("put user: %w", err)
		}
		return byEmail.Put([]byte(user.Email), user.ID[:])
	})
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var user *domain.User

	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(usersByEmailBucket).Get([]byte(email))
		if id == nil {
			return domain.ErrNotFound
		}

		var err error
		user, err = getUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	var user *domain.User

	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		user, err = getUser(tx, userID[:])
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func getUser(tx *bolt.Tx, id []byte) (*domain.User, error) {
	v := tx.Bucket(usersBucket).Get(id)
	if v == nil {
		return nil, domain.ErrNotFound
	}

	var rec userRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	user := domain.User(rec)
	return &user, nil
}
