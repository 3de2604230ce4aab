package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/driveezzy/internal/core/domain"
)

// UserRepository stores accounts. CreateUser must reject a second account
// for the same email atomically and report it as domain.ErrDuplicateEmail.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// BookingRepository stores bookings. Lookups of missing records return
// domain.ErrNotFound.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus, at time.Time) error
}
