package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crewlink/crewlink-api/internal/api/handler"
	"github.com/crewlink/crewlink-api/internal/api/middleware"
	"github.com/crewlink/crewlink-api/internal/core/service"
	mongodb "github.com/crewlink/crewlink-api/internal/infrastructure/db/mongo"
	redisinfra "github.com/crewlink/crewlink-api/internal/infrastructure/db/redis"
	"github.com/crewlink/crewlink-api/internal/infrastructure/http/handlers"
	"github.com/crewlink/crewlink-api/internal/infrastructure/notify"
	"github.com/crewlink/crewlink-api/internal/infrastructure/queue"
)

// Options carries the tunables the router needs beyond its connections.
type Options struct {
	JWTSecret    string
	InviteTTL    time.Duration
	SessionTTL   time.Duration
	StatsWorkers int
}

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the stats dispatcher, whose lifecycle the caller owns.
func NewRouter(db *mongo.Database, rdb *redis.Client, opts Options, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("crewlink"))

	// --- Repositories ---
	workRepo := mongodb.NewWorkRepository(db)
	connRepo := mongodb.NewConnectionRepository(db)
	tokenRepo := mongodb.NewTokenRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)

	// --- Services ---
	statsService := service.NewStatsService(workRepo, userRepo, log)
	dispatcher := queue.NewDispatcher(opts.StatsWorkers, statsService, log)

	tokenService := service.NewTokenService(tokenRepo, opts.JWTSecret, opts.InviteTTL, log)
	connService := service.NewConnectionService(connRepo, log)
	workService := service.NewWorkService(
		workRepo,
		userRepo,
		tokenService,
		notify.NewLogNotifier(log),
		roleRepo,
		connService,
		dispatcher,
		redisinfra.NewInviteThrottle(rdb),
		log,
	)
	membershipService := service.NewMembershipService(workRepo, connService, dispatcher, log)
	authService := service.NewAuthService(userRepo, opts.JWTSecret, opts.SessionTTL)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	workHandler := handler.NewWorkHandler(workService, membershipService)
	connHandler := handler.NewConnectionHandler(connService)
	authRequired := middleware.Auth(opts.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Work & membership routes ---
	works := e.Group("/v1/works", authRequired)
	works.POST("", workHandler.Create)
	works.POST("/invites/accept", workHandler.AcceptInvite)
	works.GET("/:id/membership", workHandler.Membership)
	works.POST("/:id/verify", workHandler.Verify)

	// --- Connection routes ---
	conns := e.Group("/v1/connections", authRequired)
	conns.POST("", connHandler.Request)
	conns.POST("/:id/accept", connHandler.Accept)
	conns.POST("/disconnect", connHandler.Disconnect)

	// --- Operational endpoints ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, dispatcher
}
