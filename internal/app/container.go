package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-timetable/internal/api"
	"github.com/nekogravitycat/court-timetable/internal/auth"
	"github.com/nekogravitycat/court-timetable/internal/availability"
	"github.com/nekogravitycat/court-timetable/internal/schedule"
	"github.com/nekogravitycat/court-timetable/internal/upstream"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Redis        *redis.Client
	Logger       *zap.Logger
	JWTSecret    string

	UpstreamBaseURL      string
	UpstreamTimeout      time.Duration
	UpstreamRPS          float64
	AvailabilityCacheTTL time.Duration
	HoldTTL              time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router *gin.Engine
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	backend := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, cfg.UpstreamRPS)

	// Availability Module
	var availCache availability.Cache
	if cfg.Redis != nil {
		availCache = availability.NewRedisCache(cfg.Redis, cfg.AvailabilityCacheTTL)
	}
	availService := availability.NewService(backend, availCache, logger.Named("availability"))

	// Schedule Module
	scheduleRepo := schedule.NewPgxRepository(cfg.DBPool)
	scheduleService := schedule.NewService(scheduleRepo, availService, backend, cfg.HoldTTL, logger.Named("schedule"))

	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		AvailService:    availService,
		ScheduleService: scheduleService,
		JWTManager:      jwtManager,
		Logger:          logger.Named("http"),
	})

	return &Container{Router: router}
}
