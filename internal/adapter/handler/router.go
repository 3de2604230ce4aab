package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Accounts    *AccountHandler
	Bookings    *BookingHandler
	Sessions    *SessionGate
	AuthLimiter gin.HandlerFunc
	CORSOrigins []string
	Logger      *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(cfg.Logger))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/")
	if cfg.AuthLimiter != nil {
		auth.Use(cfg.AuthLimiter)
	}
	auth.POST("/register", cfg.Accounts.Register)
	auth.POST("/login", cfg.Accounts.Login)

	r.POST("/logout", cfg.Accounts.Logout)
	r.GET("/car-types", cfg.Bookings.CarTypes)

	protected := r.Group("/", cfg.Sessions.RequireSession())
	protected.GET("/book/:car_type", cfg.Bookings.Quote)
	protected.POST("/book/:car_type", cfg.Bookings.CreateBooking)
	protected.GET("/my-bookings", cfg.Bookings.MyBookings)
	protected.POST("/cancel-booking/:booking_id", cfg.Bookings.CancelBooking)

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
