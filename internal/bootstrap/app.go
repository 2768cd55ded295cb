package bootstrap

import (
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/worklog-app/worklog-backend/config"
	httpapi "github.com/worklog-app/worklog-backend/internal/api/http"
	"github.com/worklog-app/worklog-backend/internal/auth"
	authhttp "github.com/worklog-app/worklog-backend/internal/auth/http"
	authmiddleware "github.com/worklog-app/worklog-backend/internal/auth/middleware"
	authrepo "github.com/worklog-app/worklog-backend/internal/auth/repository"
	authservice "github.com/worklog-app/worklog-backend/internal/auth/service"
	dashboardhttp "github.com/worklog-app/worklog-backend/internal/dashboard/http"
	dashboardservice "github.com/worklog-app/worklog-backend/internal/dashboard/service"
	"github.com/worklog-app/worklog-backend/internal/logging"
	projecthttp "github.com/worklog-app/worklog-backend/internal/projects/http"
	projectrepo "github.com/worklog-app/worklog-backend/internal/projects/repository"
	projectservice "github.com/worklog-app/worklog-backend/internal/projects/service"
	taskhttp "github.com/worklog-app/worklog-backend/internal/tasks/http"
	taskrepo "github.com/worklog-app/worklog-backend/internal/tasks/repository"
	taskservice "github.com/worklog-app/worklog-backend/internal/tasks/service"
	cronjob "github.com/worklog-app/worklog-backend/internal/timelogs/cron"
	"github.com/worklog-app/worklog-backend/internal/timelogs/export"
	timeloghttp "github.com/worklog-app/worklog-backend/internal/timelogs/http"
	timelogrepo "github.com/worklog-app/worklog-backend/internal/timelogs/repository"
	timelogservice "github.com/worklog-app/worklog-backend/internal/timelogs/service"
)

const serviceName = "worklog-backend"

// Deps are the opened backends. Redis, Archiver and Firebase are optional.
type Deps struct {
	Config   *config.Config
	Log      logging.Logger
	Pool     *pgxpool.Pool
	SQL      *sql.DB
	Redis    *redis.Client
	Archiver *export.Archiver
	Firebase authmiddleware.IDTokenVerifier
}

type App struct {
	Router *gin.Engine
	// Scheduler is nil when the Redis timer cache is disabled.
	Scheduler *cronjob.Scheduler
}

// Wire builds repositories, services and handlers on top of the opened backends.
func Wire(d Deps) (*App, error) {
	if d.Config == nil || d.Pool == nil || d.SQL == nil {
		return nil, fmt.Errorf("wire: config and both database handles are required")
	}
	if d.Log == nil {
		d.Log = logging.Nop{}
	}
	cfg := d.Config
	loc := cfg.Location()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := authservice.NewAuthService(authrepo.NewUserRepository(d.SQL), tokens, d.Log)

	var requireAuth gin.HandlerFunc
	if d.Firebase != nil {
		requireAuth = authmiddleware.FirebaseAuthMiddleware(d.Firebase, authSvc, d.Log)
	} else {
		requireAuth = authmiddleware.JWTAuthMiddleware(tokens)
	}

	projectSvc := projectservice.NewProjectService(projectrepo.NewProjectRepository(d.Pool), d.Log)

	tasks := taskrepo.NewTaskRepository(d.Pool)
	taskSvc := taskservice.NewTaskService(tasks, projectSvc, d.Log)

	logs := timelogrepo.NewTimeLogRepository(d.Pool)

	var (
		cache     *timelogrepo.RedisTimerCache
		cachePing httpapi.Pinger
		timerSvc  *timelogservice.TimerService
		scheduler *cronjob.Scheduler
	)
	if d.Redis != nil {
		cache = timelogrepo.NewRedisTimerCache(d.Redis)
		cachePing = cache
		timerSvc = timelogservice.NewTimerService(logs, cache, d.Log)
		scheduler = cronjob.NewScheduler(cfg.App.ReconcileSchedule, logs, cache, d.Log)
	} else {
		timerSvc = timelogservice.NewTimerService(logs, nil, d.Log)
	}

	timelogHandler := timeloghttp.New(timerSvc, loc, d.Log)
	if cache != nil {
		timelogHandler.WithEvents(cache)
	}
	if d.Archiver != nil {
		timelogHandler.WithArchiver(d.Archiver)
	}

	dashboardSvc := dashboardservice.NewDashboardService(logs, tasks, loc)

	router := BuildRouter(RouterOptions{
		CORSOrigins:   cfg.Server.CORSOrigins,
		AuthRateLimit: cfg.Auth.RateLimitRPS,
		AuthRateBurst: cfg.Auth.RateLimitBurst,
		Log:           d.Log,
	}, Handlers{
		Health:      httpapi.NewHealthHandler(serviceName, cfg.App.Version, d.Pool, cachePing),
		Auth:        authhttp.New(authSvc, d.Log),
		Projects:    projecthttp.New(projectSvc, d.Log),
		Tasks:       taskhttp.New(taskSvc, d.Log),
		TimeLogs:    timelogHandler,
		Dashboard:   dashboardhttp.New(dashboardSvc, loc, d.Log),
		RequireAuth: requireAuth,
	})

	return &App{Router: router, Scheduler: scheduler}, nil
}
