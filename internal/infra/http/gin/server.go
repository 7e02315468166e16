package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayflow/internal/infra/obs"
)

type BookingHandlers struct {
	User           UserHTTP
	Booking        BookingHTTP
	AuthMiddleware gin.HandlerFunc
}

// NewBookingServer wires the customer-facing service: accounts, token
// issuance and the booking saga surface.
func NewBookingServer(env, addr string, obsMW obs.Middleware, health obs.HealthHandlers, h BookingHandlers) *http.Server {
	router := newRouter(env, obsMW, health, h.AuthMiddleware)

	if h.User != nil {
		router.POST("/user/register", h.User.Register)
		router.POST("/user/auth", h.User.Login)
		router.POST("/user", h.User.Create)
		router.PATCH("/user/:id", h.User.Update)
		router.DELETE("/user/:id", h.User.Delete)
	}
	if h.Booking != nil {
		router.POST("/booking", h.Booking.Create)
		router.GET("/bookings", h.Booking.List)
		router.GET("/booking/:id", h.Booking.Get)
		router.DELETE("/booking/:id", h.Booking.Cancel)
	}

	return &http.Server{Addr: addr, Handler: router}
}

type HotelHandlers struct {
	Hotel          HotelHTTP
	Internal       InternalHTTP
	AuthMiddleware gin.HandlerFunc
}

// NewHotelServer wires the inventory service: hotel and room administration,
// recommendations, and the internal commit/release surface.
func NewHotelServer(env, addr string, obsMW obs.Middleware, health obs.HealthHandlers, h HotelHandlers) *http.Server {
	router := newRouter(env, obsMW, health, h.AuthMiddleware)

	if h.Hotel != nil {
		api := router.Group("/api")
		api.GET("/hotels", h.Hotel.ListHotels)
		api.POST("/hotels", h.Hotel.CreateHotel)
		api.GET("/rooms", h.Hotel.ListRooms)
		api.POST("/rooms", h.Hotel.CreateRoom)
		api.GET("/rooms/recommend", h.Hotel.Recommend)
	}
	if h.Internal != nil {
		internal := router.Group("/internal")
		internal.POST("/rooms/:id/confirm-availability", h.Internal.ConfirmAvailability)
		internal.POST("/rooms/:id/release", h.Internal.Release)
	}

	return &http.Server{Addr: addr, Handler: router}
}

func newRouter(env string, obsMW obs.Middleware, health obs.HealthHandlers, authMW gin.HandlerFunc) *gin.Engine {
	mode := configureGinMode(env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", obs.RequestIDHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))
	if authMW != nil {
		router.Use(authMW)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
