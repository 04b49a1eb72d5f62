package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable codes for authorization failures on protected routes.
const (
	CodeMissingToken = "AUTH_MISSING_TOKEN"
	CodeInvalidToken = "AUTH_INVALID_TOKEN"
	CodeForbidden    = "AUTH_FORBIDDEN"
	CodeConfigError  = "AUTH_CONFIG_ERROR"
)

// OK sends a 200 response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// ValidationFailed sends a 400 with a structured issue list.
func ValidationFailed(c *gin.Context, message string, issues interface{}) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message, "issues": issues})
}

// LoginRejected sends a 401 for failed credential checks. Callers must
// pass the same message for "no such user" and "wrong password".
func LoginRejected(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// Unauthorized sends a 401 with an AUTH_* code for protected routes.
func Unauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "code": code, "message": message})
}

// Forbidden sends a 403 for a valid identity with an insufficient role.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "code": CodeForbidden, "message": message})
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "message": message})
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"success": false, "message": "method not allowed"})
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": message})
}

// InternalError sends a 500. Internal detail is only exposed in debug
// mode; production clients get a generic message while the handler logs
// the real error.
func InternalError(c *gin.Context, err error) {
	message := "internal server error"
	if gin.Mode() == gin.DebugMode && err != nil {
		message = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": message})
}
