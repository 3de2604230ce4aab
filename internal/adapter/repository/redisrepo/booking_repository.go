package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/driveezzy/internal/core/domain"
)

// updateStatusScript sets fields on an existing booking hash and returns 0
// without writing when the hash is missing.
var updateStatusScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

type BookingRepository struct {
	client *redis.Client
}

func NewBookingRepository(client *redis.Client) *BookingRepository {
	return &BookingRepository{client: client}
}

// CreateBooking writes the record and its per-user index entry in one
// MULTI/EXEC block.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, bookingKey(booking.ID), bookingFields(booking)...)
		pipe.ZAdd(ctx, userBookingsKey(booking.UserID), redis.Z{
			Score:  float64(booking.CreatedAt.UnixMicro()),
			Member: booking.ID.String(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("write booking: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	m, err := r.client.HGetAll(ctx, bookingKey(bookingID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if len(m) == 0 {
		return nil, domain.ErrNotFound
	}

	return decodeBooking(m)
}

// ListByUser reads the user's index newest first. Index entries whose
// record has disappeared are skipped.
func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	ids, err := r.client.ZRevRange(ctx, userBookingsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list booking ids: %w", err)
	}

	bookings := make([]domain.Booking, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("decode booking index: %w", err)
		}

		booking, err := r.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, *booking)
	}

	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus, at time.Time) error {
	fields := []any{"status", string(status)}
	if status == domain.BookingCancelled {
		fields = append(fields, "cancelled_at", at.Format(time.RFC3339Nano))
	}

	updated, err := updateStatusScript.Run(ctx, r.client, []string{bookingKey(bookingID)}, fields...).Int()
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if updated == 0 {
		return domain.ErrNotFound
	}

	return nil
}
