package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/driveezzy/internal/core/domain"
	"github.com/srgjo27/driveezzy/internal/core/ports"
	"github.com/srgjo27/driveezzy/internal/platform/metrics"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	Password     string `json:"password" form:"password"`
	MobileNumber string `json:"mobile_number" form:"mobile_number"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

type AccountService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	logger *zap.Logger
	now    func() time.Time
}

func NewAccountService(users ports.UserRepository, hasher ports.PasswordHasher, logger *zap.Logger) *AccountService {
	return &AccountService{
		users:  users,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an account. The repository enforces email uniqueness in
// the same write that inserts the user.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		MobileNumber: strings.TrimSpace(req.MobileNumber),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			s.logger.Info("Registration rejected: email already registered")
			return nil, domain.ErrDuplicateEmail
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, storageError(err)
	}

	metrics.IncUserRegistered()
	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))

	return &RegisterResponse{UserID: user.ID.String()}, nil
}

// Authenticate returns the account matching email and password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncLogin("failure")
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up user", zap.Error(err))
		return nil, storageError(err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Warn("Stored credential could not be verified", zap.String("user_id", user.ID.String()), zap.Error(err))
		metrics.IncLogin("failure")
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		metrics.IncLogin("failure")
		return nil, domain.ErrInvalidCredentials
	}

	metrics.IncLogin("success")

	return &LoginResponse{UserID: user.ID, Name: user.Name}, nil
}

// storageError tags an unexpected repository failure so callers can tell it
// apart from domain rejections.
func storageError(err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}
