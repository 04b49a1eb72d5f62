package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/worksite/core/internal/config"
	"github.com/worksite/core/internal/database"
	"github.com/worksite/core/internal/middleware"
	pkgcron "github.com/worksite/core/internal/pkg/cron"
	pkgmail "github.com/worksite/core/internal/pkg/mail"
	pkgredis "github.com/worksite/core/internal/pkg/redis"
	"github.com/worksite/core/internal/pkg/session"
	"github.com/worksite/core/internal/pkg/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	db       *gorm.DB
	logger   *zap.Logger
	issuer   *token.Issuer
	sessions session.Store
	cancel   context.CancelFunc
	sched    *pkgcron.Scheduler
}

// New initializes the application: database, Redis, token issuer, routes
// and background jobs. Configuration must already be validated.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	issuer, err := token.New(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.Issuer,
		cfg.Auth.AccessTTL,
		cfg.Auth.RefreshTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc:  originAllowFunc(cfg),
	}
	router.Use(cors.New(corsConfig))

	sessions := session.NewGormStore(db)
	mailer := pkgmail.New(cfg.Mail)

	ctx, cancel := context.WithCancel(context.Background())
	sched := pkgcron.New()
	registerCronJobs(sched, sessions, logger)
	go sched.Start(ctx)

	app := &App{
		cfg:      cfg,
		router:   router,
		db:       db,
		logger:   logger,
		issuer:   issuer,
		sessions: sessions,
		cancel:   cancel,
		sched:    sched,
	}
	app.registerRoutes(rc, mailer)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines.
func (a *App) Shutdown() { a.cancel() }
