// Package admin exposes operator-only session administration.
package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/worksite/core/internal/pkg/response"
	"github.com/worksite/core/internal/pkg/session"
	"go.uber.org/zap"
)

type Handler struct {
	sessions session.Store
	logger   *zap.Logger
}

func NewHandler(sessions session.Store, logger *zap.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

// RegisterRoutes mounts the admin endpoints; the route-policy table
// restricts them to the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/admin/sessions")
	g.GET("", h.listAll)
	g.POST("/sweep", h.sweep)
}

func (h *Handler) listAll(c *gin.Context) {
	sessions, err := h.sessions.ListAllActive(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"data": sessions})
}

// sweep runs the expiry sweep immediately instead of waiting for the
// scheduled job.
func (h *Handler) sweep(c *gin.Context) {
	count, err := h.sessions.SweepExpired(c.Request.Context())
	if err != nil {
		h.logger.Error("manual session sweep failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "swept": count})
}
