package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"doctordash/handlers"
	"doctordash/middleware"
)

// RegisterBookingRoutes sets up the endpoints for the reservation flow.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	booking := r.Group("/api/booking")
	{
		booking.Use(middleware.JWTAuthUserMiddleware())
		booking.POST("/hold", hb.Booking.Hold)         // Phase 1: hold the slot
		booking.POST("/payment", hb.Booking.Pay)       // Phase 2: create the order
		booking.POST("/finalize", hb.Booking.Finalize) // Phase 3: confirm the booking
		booking.POST("/release", hb.Booking.Release)
		booking.GET("/appointments", hb.Booking.ListAppointments)
		booking.DELETE("/appointments/:id", hb.Booking.Cancel)
	}
}

// RegisterReminderRoutes sets up the endpoints for reminder schedules.
func RegisterReminderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	reminders := r.Group("/api/reminders")
	{
		reminders.Use(middleware.JWTAuthUserMiddleware())
		reminders.POST("", hb.Reminder.Upsert)
		reminders.GET("", hb.Reminder.List)
		reminders.DELETE("/:id", hb.Reminder.Delete)
		reminders.POST("/:id/postpone", hb.Reminder.Postpone)
		reminders.POST("/:id/test", hb.Reminder.TestFire)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm DoctorDash"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterReminderRoutes(r, hb)
}
