package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/petcare-reservation/cache"
	"github.com/yeremiapane/petcare-reservation/controllers"
	"github.com/yeremiapane/petcare-reservation/events"
	"github.com/yeremiapane/petcare-reservation/middlewares"
	"github.com/yeremiapane/petcare-reservation/repositories"
	"github.com/yeremiapane/petcare-reservation/services"
	"github.com/yeremiapane/petcare-reservation/utils"
	"gorm.io/gorm"
)

// Options carries the dependencies of the HTTP layer. Zero Policy and CacheTTLs fall back to the defaults.
type Options struct {
	DB                  *gorm.DB
	Cache               cache.Cache
	CacheTTLs           cache.TTLs
	Policy              services.LifecyclePolicy
	EnforceServiceCarer bool
	// JWTSecret enables bearer auth on every resource route when non-empty.
	JWTSecret          string
	CORSAllowedOrigins []string
	// RateLimitRPS disables the limiter when zero or negative.
	RateLimitRPS   float64
	RateLimitBurst int
	// Events serves the websocket feed at /events when set.
	Events *events.Hub
}

func SetupRouter(opts Options) *gin.Engine {
	if err := controllers.RegisterValidators(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to register validators: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSAllowedOrigins))
	if opts.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).RateLimit())
	}

	if opts.Policy.Window <= 0 {
		opts.Policy = services.DefaultLifecyclePolicy()
	}
	if opts.CacheTTLs.Default <= 0 {
		opts.CacheTTLs = cache.DefaultTTLs()
	}

	store := repositories.NewGormStore(opts.DB)
	reservationSvc := services.NewReservationService(store, opts.Cache, opts.Policy, opts.CacheTTLs)
	linkSvc := services.NewReservationLinkService(store, opts.Cache, opts.CacheTTLs, opts.EnforceServiceCarer)
	if opts.Events != nil {
		reservationSvc.WithPublisher(opts.Events)
		linkSvc.WithPublisher(opts.Events)
	}

	reservationCtrl := controllers.NewReservationController(reservationSvc)
	linkCtrl := controllers.NewReservationServiceController(linkSvc)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/")
	if opts.JWTSecret != "" {
		api.Use(middlewares.AuthMiddleware([]byte(opts.JWTSecret), store.Identities()))
	}

	if opts.Events != nil {
		api.GET("/events", opts.Events.Handler())
	}

	reservations := api.Group("/reservations")
	{
		reservations.POST("", reservationCtrl.CreateReservation)
		reservations.GET("", reservationCtrl.GetAllReservations)
		reservations.GET("/search", reservationCtrl.SearchReservations)
		reservations.GET("/:id", reservationCtrl.GetReservation)
		reservations.PUT("/:id", reservationCtrl.UpdateReservation)
		reservations.DELETE("/:id", reservationCtrl.DeleteReservation)
	}

	links := api.Group("/reservation-services")
	{
		links.POST("", linkCtrl.CreateReservationService)
		links.GET("", linkCtrl.GetAllReservationServices)
		links.GET("/search", linkCtrl.SearchReservationServices)
		links.GET("/by-reservation/:id", linkCtrl.GetByReservation)
		links.GET("/by-service/:id", linkCtrl.GetByService)
		links.DELETE("/by-reservation/:id", linkCtrl.DeleteByReservation)
		links.GET("/:id", linkCtrl.GetReservationService)
		links.PUT("/:id", linkCtrl.UpdateReservationService)
		links.DELETE("/:id", linkCtrl.DeleteReservationService)
	}

	return r
}
