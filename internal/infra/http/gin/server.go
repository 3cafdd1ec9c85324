package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staycal/internal/infra/config"
	"staycal/internal/infra/obs"
)

type CalendarHTTP interface {
	Month(c *gin.Context)
}

type BlocksHTTP interface {
	Create(c *gin.Context)
	Delete(c *gin.Context)
}

type PricesHTTP interface {
	Put(c *gin.Context)
	Delete(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Confirm(c *gin.Context)
	Reject(c *gin.Context)
	Cancel(c *gin.Context)
}

type ICalHTTP interface {
	Import(c *gin.Context)
	Export(c *gin.Context)
	Feed(c *gin.Context)
}

type Handlers struct {
	Calendar CalendarHTTP
	Blocks   BlocksHTTP
	Prices   PricesHTTP
	Booking  BookingHTTP
	ICal     ICalHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Content-Disposition",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	// public sync feed polled by external platforms
	if h.ICal != nil {
		router.GET("/api/ical/:property_id", h.ICal.Feed)
	}

	api := router.Group("/api/v1")
	if h.Calendar != nil {
		api.GET("/properties/:id/calendar", h.Calendar.Month)
	}
	if h.Blocks != nil {
		api.POST("/properties/:id/blocks", h.Blocks.Create)
		api.DELETE("/properties/:id/blocks/:date", h.Blocks.Delete)
	}
	if h.Prices != nil {
		api.PUT("/properties/:id/prices/:date", h.Prices.Put)
		api.DELETE("/properties/:id/prices/:date", h.Prices.Delete)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/reject", h.Booking.Reject)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.ICal != nil {
		api.POST("/properties/:id/calendar/import", h.ICal.Import)
		api.GET("/properties/:id/calendar/export", h.ICal.Export)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
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
