package redisrepo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/driveezzy/internal/core/domain"
)

func userFields(u *domain.User) []any {
	return []any{
		"id", u.ID.String(),
		"name", u.Name,
		"email", u.Email,
		"password_hash", u.PasswordHash,
		"mobile_number", u.MobileNumber,
		"created_at", u.CreatedAt.Format(time.RFC3339Nano),
	}
}

func decodeUser(m map[string]string) (*domain.User, error) {
	id, err := uuid.Parse(m["id"])
	if err != nil {
		return nil, fmt.Errorf("decode user id: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, m["created_at"])
	if err != nil {
		return nil, fmt.Errorf("decode user created_at: %w", err)
	}

	return &domain.User{
		ID:           id,
		Name:         m["name"],
		Email:        m["email"],
		PasswordHash: m["password_hash"],
		MobileNumber: m["mobile_number"],
		CreatedAt:    createdAt,
	}, nil
}

func bookingFields(b *domain.Booking) []any {
	fields := []any{
		"id", b.ID.String(),
		"user_id", b.UserID.String(),
		"car_type", b.CarType,
		"pickup", b.PickupDate.Format(domain.DateLayout),
		"dropoff", b.DropoffDate.Format(domain.DateLayout),
		"num_days", strconv.Itoa(b.NumDays),
		"special_requests", b.SpecialRequests,
		"payment_mode", b.PaymentMode,
		"daily_rate", strconv.FormatInt(b.DailyRate, 10),
		"total_price", strconv.FormatInt(b.TotalPrice, 10),
		"status", string(b.Status),
		"created_at", b.CreatedAt.Format(time.RFC3339Nano),
	}
	if b.CancelledAt != nil {
		fields = append(fields, "cancelled_at", b.CancelledAt.Format(time.RFC3339Nano))
	}
	return fields
}

func decodeBooking(m map[string]string) (*domain.Booking, error) {
	var b domain.Booking
	var err error

	if b.ID, err = uuid.Parse(m["id"]); err != nil {
		return nil, fmt.Errorf("decode booking id: %w", err)
	}
	if b.UserID, err = uuid.Parse(m["user_id"]); err != nil {
		return nil, fmt.Errorf("decode booking user_id: %w", err)
	}
	if b.PickupDate, err = time.Parse(domain.DateLayout, m["pickup"]); err != nil {
		return nil, fmt.Errorf("decode booking pickup: %w", err)
	}
	if b.DropoffDate, err = time.Parse(domain.DateLayout, m["dropoff"]); err != nil {
		return nil, fmt.Errorf("decode booking dropoff: %w", err)
	}
	if b.NumDays, err = strconv.Atoi(m["num_days"]); err != nil {
		return nil, fmt.Errorf("decode booking num_days: %w", err)
	}
	if b.DailyRate, err = strconv.ParseInt(m["daily_rate"], 10, 64); err != nil {
		return nil, fmt.Errorf("decode booking daily_rate: %w", err)
	}
	if b.TotalPrice, err = strconv.ParseInt(m["total_price"], 10, 64); err != nil {
		return nil, fmt.Errorf("decode booking total_price: %w", err)
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, m["created_at"]); err != nil {
		return nil, fmt.Errorf("decode booking created_at: %w", err)
	}
	if v, ok := m["cancelled_at"]; ok && v != "" {
		at, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("decode booking cancelled_at: %w", err)
		}
		b.CancelledAt = &at
	}

	b.CarType = m["car_type"]
	b.SpecialRequests = m["special_requests"]
	b.PaymentMode = m["payment_mode"]
	b.Status = domain.BookingStatus(m["status"])

	return &b, nil
}
