package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/worksite/core/internal/middleware"
	"github.com/worksite/core/internal/models"
	"github.com/worksite/core/internal/modules/admin"
	"github.com/worksite/core/internal/modules/auth"
	"github.com/worksite/core/internal/modules/user"
	pkgmail "github.com/worksite/core/internal/pkg/mail"
	pkgredis "github.com/worksite/core/internal/pkg/redis"
	"github.com/worksite/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

// routePolicy is the declarative access table evaluated on every request.
// First matching rule wins; anything unmatched requires authentication.
func routePolicy() *middleware.Table {
	return middleware.NewTable(
		middleware.Rule{Method: http.MethodGet, Pattern: "/", Access: middleware.AccessPublic},
		middleware.Rule{Method: http.MethodGet, Pattern: "/ping", Access: middleware.AccessPublic},
		middleware.Rule{Method: http.MethodPost, Pattern: apiPrefix + "/auth/login", Access: middleware.AccessPublic},
		middleware.Rule{Method: http.MethodPost, Pattern: apiPrefix + "/auth/register", Access: middleware.AccessPublic},
		middleware.Rule{Method: http.MethodPost, Pattern: apiPrefix + "/auth/refresh", Access: middleware.AccessPublic},
		middleware.Rule{Pattern: apiPrefix + "/admin/*", Access: middleware.AccessRoles, Roles: []string{models.RoleAdmin}},
	)
}

func (a *App) registerRoutes(rc *pkgredis.Client, mailer *pkgmail.Sender) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// The guard runs first so the rate limiter can tell authenticated
	// traffic apart. Rate limiting and idempotence need Redis.
	r.Use(middleware.Guard(a.issuer, a.sessions, routePolicy(), a.logger))
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	appInfo := gin.H{
		"name":    "worksite-core",
		"version": "1.0.0",
	}
	r.GET("/", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })

	api := r.Group(apiPrefix)

	authSvc := auth.NewService(auth.NewGormUserRepository(a.db), a.sessions, a.issuer, mailer, a.logger)
	auth.NewHandler(authSvc, a.sessions, a.logger).RegisterRoutes(api, middleware.LoginRateLimit(rc.Raw()))

	user.NewHandler(user.NewService(a.db)).RegisterRoutes(api)
	admin.NewHandler(a.sessions, a.logger).RegisterRoutes(api)
}
