package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"parkventure/handlers"
	"parkventure/middleware"
	"parkventure/models"
)

// RegisterTimeSlotRoutes registers template management plus the public
// availability lookup.
func RegisterTimeSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/timeslots")
	{
		// Public: anyone browsing a park sees its open slots.
		api.GET("/parks/:parkId/availability", hb.TimeSlots.Availability)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		protected.GET("/templates/:id", hb.TimeSlots.GetTemplate)

		manage := protected.Group("")
		manage.Use(middleware.RequireRoles(models.RoleOwner, models.RoleAdmin))
		manage.POST("/parks/:parkId/templates", hb.TimeSlots.CreateTemplate)
		manage.PUT("/templates/:id", hb.TimeSlots.UpdateTemplate)
		manage.DELETE("/templates/:id", hb.TimeSlots.DeleteTemplate)
		manage.POST("/check-overlap", hb.TimeSlots.CheckOverlap)
	}
}

// RegisterCartRoutes registers the per-user cart endpoints.
func RegisterCartRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/cart")
	{
		api.Use(middleware.AuthMiddleware())
		api.GET("", hb.Carts.Get)
		api.DELETE("", hb.Carts.Clear)
		api.POST("/items", hb.Carts.AddItem)
		api.PUT("/items/:itemId", hb.Carts.UpdateItem)
		api.DELETE("/items", hb.Carts.RemoveItems)
		api.PUT("/sync", hb.Carts.Sync)
	}
}

// RegisterBookingRoutes registers the booking ledger endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/booking")
	{
		api.Use(middleware.AuthMiddleware())
		api.POST("", hb.Bookings.CreateFromCart)
		api.GET("/user", hb.Bookings.ListMine)
		api.GET("/by-payment/:paymentId", hb.Bookings.GetByPaymentID)
		api.GET("/qr/:bookingId", hb.Bookings.GetQRCode)
		api.GET("/:id", hb.Bookings.GetByID)
		api.DELETE("/:id/cancel", hb.Bookings.Cancel)

		staff := api.Group("")
		staff.Use(middleware.RequireRoles(models.RoleStaff, models.RoleOwner, models.RoleAdmin))
		staff.GET("/parks/:parkId", hb.Bookings.GetByPark)
		staff.PUT("/:id/used", hb.Bookings.MarkUsed)

		admin := api.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.GET("", hb.Bookings.List)
		admin.PUT("/:id/status", hb.Bookings.OverrideStatus)
		admin.DELETE("/:id/admin", hb.Bookings.AdminDelete)
	}
}

// RegisterPaymentRoutes registers checkout creation and the gateway
// webhook. The webhook stays outside the auth middleware: the gateway
// authenticates with its signature, not a bearer token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.Payments.Webhook)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		protected.POST("/create-checkout", hb.Payments.CreateCheckout)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm ParkVenture"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterTimeSlotRoutes(r, hb)
	RegisterCartRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
}
