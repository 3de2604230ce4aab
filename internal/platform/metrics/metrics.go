package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// OtherCarType labels bookings for categories outside the rate table.
const OtherCarType = "other"

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driveezzy",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by car type.",
		},
		[]string{"car_type"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driveezzy",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled by their owners.",
		},
	)

	userRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driveezzy",
			Name:      "user_registered_total",
			Help:      "Count of accounts registered.",
		},
	)

	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driveezzy",
			Name:      "login_attempts_total",
			Help:      "Count of login attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingCancelled, userRegistered, loginAttempts)
	})
}

func IncBookingCreated(carType string) {
	bookingCreated.WithLabelValues(carType).Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncUserRegistered() {
	userRegistered.Inc()
}

func IncLogin(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}
