package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/driveezzy/internal/core/domain"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser relies on the UNIQUE(email) constraint, so two concurrent
// registrations for one email cannot both succeed.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (id, name, email, password_hash, mobile_number, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.MobileNumber, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
	SELECT id, name, email, password_hash, mobile_number, created_at
	FROM users
	WHERE email = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `
	SELECT id, name, email, password_hash, mobile_number, created_at
	FROM users
	WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.MobileNumber,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &user, nil
}
