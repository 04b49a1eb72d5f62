package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/worksite/core/internal/middleware"
	"github.com/worksite/core/internal/models"
	"github.com/worksite/core/internal/pkg/response"
	"github.com/worksite/core/internal/pkg/session"
	"go.uber.org/zap"
)

type Handler struct {
	svc      *Service
	sessions session.Store
	logger   *zap.Logger
}

func NewHandler(svc *Service, sessions session.Store, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: logger}
}

// RegisterRoutes mounts the auth endpoints. Which of them are public is
// decided by the route-policy table, not here.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginLimiter gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/login", loginLimiter, h.login)
	a.POST("/register", h.register)
	a.POST("/refresh", h.refresh)
	a.POST("/logout", h.logout)
	a.POST("/logout-others", h.logoutOthers)
	a.GET("/sessions", h.listSessions)
	a.DELETE("/sessions/:id", h.revokeSession)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	meta := session.DeviceMetadata{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	res := h.svc.Login(c.Request.Context(), dto, meta)

	switch res.Outcome {
	case OutcomeSuccess:
		response.OK(c, gin.H{
			"success": true,
			"user":    toUserPayload(res.User),
			"tokens":  res.Tokens,
		})
	case OutcomeInvalidInput:
		response.BadRequest(c, res.Message)
	case OutcomeInvalidCredentials, OutcomeAccountDisabled:
		response.LoginRejected(c, res.Message)
	case OutcomeStoreUnavailable:
		h.logger.Error("login unavailable", zap.Error(res.Err))
		response.InternalError(c, res.Err)
	default:
		h.logger.Error("unexpected login outcome", zap.String("outcome", string(res.Outcome)))
		response.InternalError(c, nil)
	}
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "email, password, and name are required")
		return
	}

	res := h.svc.Register(c.Request.Context(), dto)

	switch res.Outcome {
	case OutcomeSuccess:
		response.Created(c, gin.H{
			"success": true,
			"user":    toUserPayload(res.User),
		})
	case OutcomeInvalidInput:
		response.BadRequest(c, res.Message)
	case OutcomeWeakPassword:
		response.ValidationFailed(c, res.Message, res.Issues)
	case OutcomeDuplicateEmail:
		response.Conflict(c, res.Message)
	case OutcomeStoreUnavailable:
		h.logger.Error("register unavailable", zap.Error(res.Err))
		response.InternalError(c, res.Err)
	default:
		h.logger.Error("unexpected register outcome", zap.String("outcome", string(res.Outcome)))
		response.InternalError(c, nil)
	}
}

func (h *Handler) refresh(c *gin.Context) {
	var dto RefreshDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "refreshToken is required")
		return
	}

	res := h.svc.Refresh(c.Request.Context(), dto.RefreshToken)

	switch res.Outcome {
	case OutcomeSuccess:
		response.OK(c, gin.H{"success": true, "tokens": res.Tokens})
	case OutcomeInvalidCredentials, OutcomeAccountDisabled:
		response.LoginRejected(c, res.Message)
	case OutcomeStoreUnavailable:
		h.logger.Error("refresh unavailable", zap.Error(res.Err))
		response.InternalError(c, res.Err)
	default:
		response.InternalError(c, nil)
	}
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) logoutOthers(c *gin.Context) {
	err := h.sessions.RevokeAllExcept(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) listSessions(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	sessions, err := h.sessions.ListActive(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	current := middleware.CurrentSessionID(c)
	items := make([]sessionPayload, 0, len(sessions))
	for i := range sessions {
		items = append(items, toSessionPayload(&sessions[i], current))
	}
	response.OK(c, gin.H{"data": items})
}

// revokeSession revokes one of the caller's own sessions. Revoking a
// session that is already gone still succeeds. The write itself is
// scoped to the caller's rows, so a dead session belonging to someone
// else never gets a new revoked_at stamp.
func (h *Handler) revokeSession(c *gin.Context) {
	sessionID := c.Param("id")
	userID := middleware.CurrentUserID(c)

	sess, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sess != nil && sess.UserID != userID {
		response.Forbidden(c, "not your session")
		return
	}

	if err := h.sessions.RevokeOwned(c.Request.Context(), userID, sessionID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		MFAEnabled:     u.MFAEnabled,
	}
}

func toSessionPayload(s *models.Session, currentID string) sessionPayload {
	return sessionPayload{
		ID:             s.ID,
		UserID:         s.UserID,
		IssuedAt:       s.CreatedAt,
		ExpiresAt:      s.RefreshExpiresAt,
		RevokedAt:      s.RevokedAt,
		IP:             s.IP,
		UserAgent:      s.UA,
		LastActivityAt: s.LastActivityAt,
		Current:        s.ID == currentID,
	}
}
