package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/driveezzy/internal/core/domain"
)

const bookingColumns = `id, user_id, car_type, pickup_date, dropoff_date, num_days, special_requests,
	payment_mode, daily_rate, total_price, status, created_at, cancelled_at`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	query := `
	INSERT INTO bookings (` + bookingColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.CarType,
		booking.PickupDate,
		booking.DropoffDate,
		booking.NumDays,
		booking.SpecialRequests,
		booking.PaymentMode,
		booking.DailyRate,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
		booking.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE user_id = $1
	ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}

	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, *booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus, at time.Time) error {
	query := `
	UPDATE bookings
	SET status = $1, cancelled_at = $2
	WHERE id = $3
	`

	var cancelledAt *time.Time
	if status == domain.BookingCancelled {
		cancelledAt = &at
	}

	result, err := r.db.ExecContext(ctx, query, status, cancelledAt, bookingID)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var cancelledAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.CarType,
		&booking.PickupDate,
		&booking.DropoffDate,
		&booking.NumDays,
		&booking.SpecialRequests,
		&booking.PaymentMode,
		&booking.DailyRate,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
		&cancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}

	if cancelledAt.Valid {
		t := cancelledAt.Time
		booking.CancelledAt = &t
	}

	return &booking, nil
}
