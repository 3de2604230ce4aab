package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/driveezzy/internal/core/domain"
	"github.com/srgjo27/driveezzy/internal/core/ports"
	"github.com/srgjo27/driveezzy/internal/platform/metrics"
	"go.uber.org/zap"
)

type CreateBookingRequest struct {
	CarType         string `json:"car_type" form:"car_type"`
	PickupDate      string `json:"check_in" form:"check_in"`
	DropoffDate     string `json:"check_out" form:"check_out"`
	SpecialRequests string `json:"special_requests" form:"special_requests"`
	PaymentMode     string `json:"payment_mode" form:"payment_mode"`
}

type CreateBookingResponse struct {
	BookingID  string `json:"booking_id"`
	CarType    string `json:"car_type"`
	NumDays    int    `json:"num_days"`
	DailyRate  int64  `json:"daily_rate"`
	TotalPrice int64  `json:"total_price"`
	Status     string `json:"status"`
}

type QuoteResponse struct {
	CarType     string `json:"car_type"`
	PricePerDay int64  `json:"price_per_day"`
}

type BookingService struct {
	bookingRepo ports.BookingRepository
	userRepo    ports.UserRepository
	rates       domain.RateTable
	logger      *zap.Logger
	now         func() time.Time
}

func NewBookingService(bookingRepo ports.BookingRepository, userRepo ports.UserRepository, rates domain.RateTable, logger *zap.Logger) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		rates:       rates,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *BookingService) Rates() []domain.CarRate {
	return s.rates.Entries()
}

func (s *BookingService) Quote(carType string) QuoteResponse {
	return QuoteResponse{CarType: carType, PricePerDay: s.rates.Lookup(carType)}
}

// CreateBooking prices and stores a confirmed booking for userID. Inverted
// or empty ranges are accepted and yield a non-positive total. No
// availability check is made.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	carType := strings.TrimSpace(req.CarType)
	if carType == "" {
		return nil, fmt.Errorf("%w: car type is required", domain.ErrValidation)
	}

	paymentMode := strings.TrimSpace(req.PaymentMode)
	if paymentMode == "" {
		return nil, fmt.Errorf("%w: payment mode is required", domain.ErrValidation)
	}

	pickup, err := parseDate(req.PickupDate)
	if err != nil {
		return nil, err
	}

	dropoff, err := parseDate(req.DropoffDate)
	if err != nil {
		return nil, err
	}

	numDays := domain.DaysBetween(pickup, dropoff)
	dailyRate := s.rates.Lookup(carType)

	booking := &domain.Booking{
		ID:              uuid.New(),
		UserID:          userID,
		CarType:         carType,
		PickupDate:      pickup,
		DropoffDate:     dropoff,
		NumDays:         numDays,
		SpecialRequests: req.SpecialRequests,
		PaymentMode:     paymentMode,
		DailyRate:       dailyRate,
		TotalPrice:      dailyRate * int64(numDays),
		Status:          domain.BookingConfirmed,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.bookingRepo.CreateBooking(ctx, booking); err != nil {
		s.logger.Error("Failed to create booking", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, storageError(err)
	}

	metrics.IncBookingCreated(s.carTypeLabel(carType))
	s.sendConfirmation(ctx, booking)

	return &CreateBookingResponse{
		BookingID:  booking.ID.String(),
		CarType:    booking.CarType,
		NumDays:    booking.NumDays,
		DailyRate:  booking.DailyRate,
		TotalPrice: booking.TotalPrice,
		Status:     string(booking.Status),
	}, nil
}

// carTypeLabel keeps the metric's car_type label bounded to the rate table.
func (s *BookingService) carTypeLabel(carType string) string {
	if !s.rates.Known(carType) {
		return metrics.OtherCarType
	}
	return strings.ToLower(carType)
}

// sendConfirmation never fails the booking it reports on.
func (s *BookingService) sendConfirmation(ctx context.Context, booking *domain.Booking) {
	user, err := s.userRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		s.logger.Warn("Skipping booking confirmation: user lookup failed",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
		return
	}

	s.logger.Info("Booking confirmation",
		zap.String("booking_id", booking.ID.String()),
		zap.String("name", user.Name),
		zap.String("car_type", booking.CarType),
		zap.Int("num_days", booking.NumDays))
}

// ListBookingsForUser returns the user's bookings, newest first.
func (s *BookingService) ListBookingsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list bookings", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, storageError(err)
	}

	if bookings == nil {
		return []domain.Booking{}, nil
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	return bookings, nil
}

// CancelBooking marks the booking cancelled when callerID owns it.
// Cancelling an already cancelled booking succeeds and re-stamps the
// cancellation time.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, callerID uuid.UUID) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return domain.ErrNotFound
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		s.logger.Error("Failed to load booking", zap.String("booking_id", bookingID), zap.Error(err))
		return storageError(err)
	}

	if !booking.IsOwnedBy(callerID) {
		s.logger.Warn("Cancellation refused: caller does not own booking",
			zap.String("booking_id", bookingID),
			zap.String("caller_id", callerID.String()))
		return domain.ErrUnauthorized
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, domain.BookingCancelled, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		s.logger.Error("Failed to cancel booking", zap.String("booking_id", bookingID), zap.Error(err))
		return storageError(err)
	}

	metrics.IncBookingCancelled()
	s.logger.Info("Booking cancelled", zap.String("booking_id", bookingID))

	return nil
}

func parseDate(value string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", domain.ErrInvalidDate, value)
	}
	return d, nil
}
