package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/worklog-app/worklog-backend/internal/api/http"
	"github.com/worklog-app/worklog-backend/internal/api/http/middleware"
	authhttp "github.com/worklog-app/worklog-backend/internal/auth/http"
	dashboardhttp "github.com/worklog-app/worklog-backend/internal/dashboard/http"
	"github.com/worklog-app/worklog-backend/internal/logging"
	projecthttp "github.com/worklog-app/worklog-backend/internal/projects/http"
	taskhttp "github.com/worklog-app/worklog-backend/internal/tasks/http"
	timeloghttp "github.com/worklog-app/worklog-backend/internal/timelogs/http"
)

type RouterOptions struct {
	CORSOrigins   []string
	AuthRateLimit float64
	AuthRateBurst int
	Log           logging.Logger
}

// Handlers are the mounted HTTP surfaces. RequireAuth guards everything
// except registration, login and health.
type Handlers struct {
	Health      *httpapi.HealthHandler
	Auth        *authhttp.Handler
	Projects    *projecthttp.Handler
	Tasks       *taskhttp.Handler
	TimeLogs    *timeloghttp.Handler
	Dashboard   *dashboardhttp.Handler
	RequireAuth gin.HandlerFunc
}

func BuildRouter(opt RouterOptions, h Handlers) *gin.Engine {
	if opt.Log == nil {
		opt.Log = logging.Nop{}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(opt.Log))
	r.Use(cors.New(corsConfig(opt.CORSOrigins)))

	h.Health.RegisterRoutes(r)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	if opt.AuthRateLimit > 0 {
		authGroup.Use(middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(opt.AuthRateLimit, opt.AuthRateBurst)))
	}
	h.Auth.Register(authGroup, h.RequireAuth)

	protected := api.Group("")
	protected.Use(h.RequireAuth)

	h.Projects.Register(protected.Group("/projects"))
	h.Tasks.Register(protected.Group("/tasks"))
	h.TimeLogs.Register(protected.Group("/timelogs"))
	h.Dashboard.Register(protected.Group("/dashboard"))

	return r
}

// corsConfig allows any origin without credentials when no origins are listed.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "x-auth-token", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Disposition", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
