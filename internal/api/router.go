package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-timetable/internal/auth"
	"github.com/nekogravitycat/court-timetable/internal/availability"
	availHttp "github.com/nekogravitycat/court-timetable/internal/availability/http"
	"github.com/nekogravitycat/court-timetable/internal/schedule"
	scheduleHttp "github.com/nekogravitycat/court-timetable/internal/schedule/http"
)

// Config holds the dependencies needed to build the router.
type Config struct {
	IsProduction    bool
	ProdOrigins     string
	AvailService    availability.Service
	ScheduleService schedule.Service
	JWTManager      *auth.JWTManager
	Logger          *zap.Logger
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, logging, auth) and registers the routes of each module.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: structured access log.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	availHandler := availHttp.NewHandler(cfg.AvailService)
	scheduleHandler := scheduleHttp.NewHandler(cfg.ScheduleService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		availHttp.RegisterRoutes(v1, availHandler, authMiddleware)
		scheduleHttp.RegisterRoutes(v1, scheduleHandler, authMiddleware)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:8081", // Expo dev server
			"http://localhost:19006",
		}
	}

	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
