package boltrepo

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/srgjo27/driveezzy/internal/core/domain"
)

type BookingRepository struct {
	db *bolt.DB
}

func NewBookingRepository(s *Store) *BookingRepository {
	return &BookingRepository{db: s.db}
}

// userIndexKey sorts a user's bookings by creation time:
// user id (16) | created_at unix nanos, big endian (8) | booking id (16).
func userIndexKey(b *domain.Booking) []byte {
	key := make([]byte, 0, 40)
	key = append(key, b.UserID[:]...)
	key = binary.BigEndian.AppendUint64(key, uint64(b.CreatedAt.UnixNano()))
	return append(key, b.ID[:]...)
}

func (r *BookingRepository) CreateBooking(_ context.Context, booking *domain.Booking) error {
	data, err := json.Marshal(booking)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bookingsBucket).Put(booking.ID[:], data); err != nil {
			return fmt.Errorf("put booking: %w", err)
		}
		return tx.Bucket(bookingsByUserBucket).Put(userIndexKey(booking), booking.ID[:])
	})
}

func (r *BookingRepository) GetByID(_ context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	var booking *domain.Booking

	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		booking, err = getBooking(tx, bookingID[:])
		return err
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// ListByUser scans the user's index range and returns bookings newest first.
func (r *BookingRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	bookings := []domain.Booking{}
	prefix := userID[:]

	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bookingsByUserBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			booking, err := getBooking(tx, v)
			if err != nil {
				return err
			}
			bookings = append(bookings, *booking)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(bookings)-1; i < j; i, j = i+1, j-1 {
		bookings[i], bookings[j] = bookings[j], bookings[i]
	}

	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(_ context.Context, bookingID uuid.UUID, status domain.BookingStatus, at time.Time) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		booking, err := getBooking(tx, bookingID[:])
		if err != nil {
			return err
		}

		booking.Status = status
		if status == domain.BookingCancelled {
			booking.CancelledAt = &at
		}

		data, err := json.Marshal(booking)
		if err != nil {
			return err
		}

		return tx.Bucket(bookingsBucket).Put(bookingID[:], data)
	})
}

func getBooking(tx *bolt.Tx, id []byte) (*domain.Booking, error) {
	v := tx.Bucket(bookingsBucket).Get(id)
	if v == nil {
		return nil, domain.ErrNotFound
	}

	var booking domain.Booking
	if err := json.Unmarshal(v, &booking); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}

	return &booking, nil
}
