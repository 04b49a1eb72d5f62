package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/worksite/core/internal/pkg/response"
	"github.com/worksite/core/internal/pkg/session"
	"github.com/worksite/core/internal/pkg/token"
	"go.uber.org/zap"
)

// Gin context keys set by the guard.
const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "user_email"
	ContextKeyRole   = "user_role"
	ContextKeySID    = "session_id"
)

// Verifier validates raw access tokens. Satisfied by *token.Issuer.
type Verifier interface {
	Verify(raw string, want token.Kind) (*token.Claims, error)
}

// Guard enforces the route-policy table on every request: bearer token
// extraction, signature/expiry verification, then session liveness. A
// token that verifies cryptographically but whose session is revoked or
// swept is rejected; that layering is what makes revocation effective.
func Guard(issuer Verifier, sessions session.Store, table *Table, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule := table.Match(c.Request.Method, c.Request.URL.Path)
		if rule.Access == AccessPublic {
			c.Next()
			return
		}

		if issuer == nil {
			response.Unauthorized(c, response.CodeConfigError, "authentication is not configured")
			return
		}

		raw := bearerToken(c)
		if raw == "" {
			response.Unauthorized(c, response.CodeMissingToken, "missing bearer token")
			return
		}

		claims, err := issuer.Verify(raw, token.KindAccess)
		if err != nil {
			var inv *token.InvalidError
			reason := "invalid token"
			if errors.As(err, &inv) {
				reason = "invalid token: " + string(inv.Reason)
			}
			response.Unauthorized(c, response.CodeInvalidToken, reason)
			return
		}

		ctx := c.Request.Context()
		sess, err := sessions.Get(ctx, claims.SessionID)
		if err != nil {
			logger.Error("session lookup failed", zap.Error(err))
			response.InternalError(c, err)
			return
		}
		if sess == nil {
			// Cryptographically valid but logically dead.
			response.Unauthorized(c, response.CodeInvalidToken, "session revoked or expired")
			return
		}

		if rule.Access == AccessRoles && !roleAllowed(claims.Role, rule.Roles) {
			response.Forbidden(c, "insufficient role")
			return
		}

		c.Set(ContextKeyUserID, claims.Subject)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeySID, claims.SessionID)
		_ = sessions.Touch(ctx, claims.SessionID)

		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentSessionID extracts the authenticated session ID from context.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// CurrentRole extracts the authenticated role from context.
func CurrentRole(c *gin.Context) string {
	v, _ := c.Get(ContextKeyRole)
	role, _ := v.(string)
	return role
}

// IsAuthenticated reports whether the guard attached an identity.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
