package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/worksite/core/internal/models"
	"github.com/worksite/core/internal/pkg/session"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	failure error // forced on every call when set
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*models.User{}}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.byID[u.ID] = &cp
	return u
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return nil, r.failure
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return nil, r.failure
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return r.failure
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) RecordLogin(_ context.Context, id, ip string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return r.failure
	}
	if u, ok := r.byID[id]; ok {
		t := at
		u.LastLoginAt = &t
		u.LastLoginIP = ip
	}
	return nil
}

// fakeSessionStore is an in-memory session.Store for service and
// middleware tests. It mirrors the persistence contract: Get hides
// revoked and refresh-expired sessions, Revoke is idempotent.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	failure  error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*models.Session{}}
}

var _ session.Store = (*fakeSessionStore)(nil)

func (s *fakeSessionStore) Create(_ context.Context, userID string, meta session.DeviceMetadata, accessTTL, refreshTTL time.Duration) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}
	now := time.Now()
	sess := &models.Session{
		UserID:           userID,
		AccessExpiresAt:  now.Add(accessTTL),
		RefreshExpiresAt: now.Add(refreshTTL),
		IP:               meta.IP,
		UA:               meta.UserAgent,
		LastActivityAt:   now,
	}
	sess.ID = uuid.NewString()
	sess.CreatedAt = now
	s.sessions[sess.ID] = sess
	cp := *sess
	return &cp, nil
}

func (s *fakeSessionStore) Get(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}
	sess, ok := s.sessions[sessionID]
	if !ok || !sess.Live(time.Now()) {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *fakeSessionStore) Touch(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	if sess, ok := s.sessions[sessionID]; ok && !sess.Revoked() {
		sess.LastActivityAt = time.Now()
	}
	return nil
}

func (s *fakeSessionStore) Revoke(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	if sess, ok := s.sessions[sessionID]; ok && !sess.Revoked() {
		now := time.Now()
		sess.RevokedAt = &now
	}
	return nil
}

func (s *fakeSessionStore) RevokeOwned(_ context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	if sess, ok := s.sessions[sessionID]; ok && sess.UserID == userID && !sess.Revoked() {
		now := time.Now()
		sess.RevokedAt = &now
	}
	return nil
}

func (s *fakeSessionStore) RevokeAllExcept(_ context.Context, userID, keepSessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	now := time.Now()
	for id, sess := range s.sessions {
		if sess.UserID == userID && id != keepSessionID && !sess.Revoked() {
			t := now
			sess.RevokedAt = &t
		}
	}
	return nil
}

func (s *fakeSessionStore) ListActive(_ context.Context, userID string) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}
	now := time.Now()
	var out []models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.Live(now) {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (s *fakeSessionStore) ListAllActive(_ context.Context) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}
	now := time.Now()
	var out []models.Session
	for _, sess := range s.sessions {
		if sess.Live(now) {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (s *fakeSessionStore) SweepExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return 0, s.failure
	}
	now := time.Now()
	var swept int64
	for id, sess := range s.sessions {
		if !now.Before(sess.RefreshExpiresAt) {
			delete(s.sessions, id)
			swept++
		}
	}
	return swept, nil
}

func (s *fakeSessionStore) get(id string) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *fakeSessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var errStoreDown = fmt.Errorf("store down")
