package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// DateLayout is the format pickup and dropoff dates arrive in.
const DateLayout = "2006-01-02"

type Booking struct {
	ID              uuid.UUID     `json:"booking_id"`
	UserID          uuid.UUID     `json:"user_id"`
	CarType         string        `json:"car_type"`
	PickupDate      time.Time     `json:"pickup"`
	DropoffDate     time.Time     `json:"dropoff"`
	NumDays         int           `json:"num_days"`
	SpecialRequests string        `json:"special_requests"`
	PaymentMode     string        `json:"payment_mode"`
	DailyRate       int64         `json:"daily_rate"`
	TotalPrice      int64         `json:"total_price"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingCancelled
}

// DaysBetween counts whole calendar days from pickup to dropoff. The result
// is negative when the range is inverted.
func DaysBetween(pickup, dropoff time.Time) int {
	p := time.Date(pickup.Year(), pickup.Month(), pickup.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(dropoff.Year(), dropoff.Month(), dropoff.Day(), 0, 0, 0, 0, time.UTC)
	return int((d.Unix() - p.Unix()) / 86400)
}
