package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksite/core/internal/models"
	"github.com/worksite/core/internal/pkg/session"
	"github.com/worksite/core/internal/pkg/token"
	"go.uber.org/zap"
)

// stubSessionStore serves a fixed set of live sessions.
type stubSessionStore struct {
	live    map[string]*models.Session
	touched []string
}

var _ session.Store = (*stubSessionStore)(nil)

func (s *stubSessionStore) Create(context.Context, string, session.DeviceMetadata, time.Duration, time.Duration) (*models.Session, error) {
	return nil, nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	return s.live[id], nil
}

func (s *stubSessionStore) Touch(_ context.Context, id string) error {
	s.touched = append(s.touched, id)
	return nil
}

func (s *stubSessionStore) Revoke(context.Context, string) error                  { return nil }
func (s *stubSessionStore) RevokeOwned(context.Context, string, string) error     { return nil }
func (s *stubSessionStore) RevokeAllExcept(context.Context, string, string) error { return nil }
func (s *stubSessionStore) ListActive(context.Context, string) ([]models.Session, error) {
	return nil, nil
}
func (s *stubSessionStore) ListAllActive(context.Context) ([]models.Session, error) { return nil, nil }
func (s *stubSessionStore) SweepExpired(context.Context) (int64, error)             { return 0, nil }

type guardFixture struct {
	router *gin.Engine
	issuer *token.Issuer
	store  *stubSessionStore
}

func newGuardFixture(t *testing.T, table *Table) *guardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := token.New("access-secret", "refresh-secret", "worksite-core", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	store := &stubSessionStore{live: map[string]*models.Session{}}
	r := gin.New()
	r.Use(Guard(issuer, store, table, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": CurrentUserID(c), "sessionId": CurrentSessionID(c)})
	})
	r.GET("/admin/stats", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return &guardFixture{router: r, issuer: issuer, store: store}
}

func defaultTable() *Table {
	return NewTable(
		Rule{Method: http.MethodGet, Pattern: "/ping", Access: AccessPublic},
		Rule{Pattern: "/admin/*", Access: AccessRoles, Roles: []string{models.RoleAdmin}},
	)
}

func (f *guardFixture) addSession(id string) {
	f.store.live[id] = &models.Session{UserID: "user-1"}
}

func (f *guardFixture) request(path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func authCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestGuardPublicRoute(t *testing.T) {
	f := newGuardFixture(t, defaultTable())
	w := f.request("/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestGuardMissingToken(t *testing.T) {
	f := newGuardFixture(t, defaultTable())
	w := f.request("/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_MISSING_TOKEN", authCode(t, w))
}

func TestGuardMalformedAuthorizationHeader(t *testing.T) {
	f := newGuardFixture(t, defaultTable())
	w := f.request("/me", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_MISSING_TOKEN", authCode(t, w))
}

func TestGuardInvalidToken(t *testing.T) {
	f := newGuardFixture(t, defaultTable())
	w := f.request("/me", "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_INVALID_TOKEN", authCode(t, w))
}

func TestGuardRefreshTokenRejected(t *testing.T) {
	f := newGuardFixture(t, defaultTable())
	f.addSession("sess-1")
	raw, _, err := f.issuer.Issue("user-1", "amy@example.com", models.RoleUser, "sess-1", token.KindRefresh)
	require.NoError(t, err)

	w := f.request("/me", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_INVALID_TOKEN", authCode(t, w))
}

func TestGuardRevokedSession(t *testing.T) {
	f := newGuardFixture(t, defaultTable())
	// Session intentionally absent from the store: the token is
	// cryptographically valid but its session is gone.
	raw, _, err := f.issuer.Issue("user-1", "amy@example.com", models.RoleUser, "sess-1", token.KindAccess)
	require.NoError(t, err)

	w := f.request("/me", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_INVALID_TOKEN", authCode(t, w))
}

func TestGuardAttachesIdentity(t *testing.T) {
	f := newGuardFixture(t, defaultTable())
	f.addSession("sess-1")
	raw, _, err := f.issuer.Issue("user-1", "amy@example.com", models.RoleUser, "sess-1", token.KindAccess)
	require.NoError(t, err)

	w := f.request("/me", "Bearer "+raw)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body.UserID)
	assert.Equal(t, "sess-1", body.SessionID)
	assert.Contains(t, f.store.touched, "sess-1")
}

func TestGuardRoleGate(t *testing.T) {
	f := newGuardFixture(t, defaultTable())
	f.addSession("sess-1")

	raw, _, err := f.issuer.Issue("user-1", "amy@example.com", models.RoleUser, "sess-1", token.KindAccess)
	require.NoError(t, err)
	w := f.request("/admin/stats", "Bearer "+raw)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_FORBIDDEN", authCode(t, w))

	raw, _, err = f.issuer.Issue("user-2", "root@example.com", models.RoleAdmin, "sess-1", token.KindAccess)
	require.NoError(t, err)
	w = f.request("/admin/stats", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardNilIssuer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Guard(nil, &stubSessionStore{}, defaultTable(), zap.NewNop()))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_CONFIG_ERROR", authCode(t, w))
}
