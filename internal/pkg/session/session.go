// Package session persists one record per active login. A session row is
// the sole source of truth for "is this token still good" beyond
// cryptographic validity.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/worksite/core/internal/models"
	"gorm.io/gorm"
)

// DeviceMetadata captures where a login came from.
type DeviceMetadata struct {
	IP        string
	UserAgent string
}

// Store is the session persistence contract. Get treats revoked or
// refresh-expired sessions as absent even though the row may survive for
// audit history. Revoke is idempotent: revoking an already-revoked or
// nonexistent session is a no-op success, since logout-after-logout is a
// benign race.
type Store interface {
	Create(ctx context.Context, userID string, meta DeviceMetadata, accessTTL, refreshTTL time.Duration) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Touch(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, sessionID string) error
	RevokeOwned(ctx context.Context, userID, sessionID string) error
	RevokeAllExcept(ctx context.Context, userID, keepSessionID string) error
	ListActive(ctx context.Context, userID string) ([]models.Session, error)
	ListAllActive(ctx context.Context) ([]models.Session, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// GormStore implements Store on the relational database. The handle is
// injected once at process start.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ Store = (*GormStore)(nil)

// Create mints the session ID here and nowhere else. uuid.NewString
// draws from crypto/rand, so IDs are not predictable from timing.
func (s *GormStore) Create(ctx context.Context, userID string, meta DeviceMetadata, accessTTL, refreshTTL time.Duration) (*models.Session, error) {
	now := time.Now()
	sess := &models.Session{
		Base:             models.Base{ID: uuid.NewString()},
		UserID:           userID,
		AccessExpiresAt:  now.Add(accessTTL),
		RefreshExpiresAt: now.Add(refreshTTL),
		IP:               strings.TrimSpace(meta.IP),
		UA:               strings.TrimSpace(meta.UserAgent),
		LastActivityAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Get returns (nil, nil) for absent, revoked, or refresh-expired sessions.
func (s *GormStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	var sess models.Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND revoked_at IS NULL AND refresh_expires_at > ?", sessionID, time.Now()).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	return &sess, nil
}

// Touch updates lastActivityAt. The revoked_at guard means a late Touch
// can never resurrect a revoked session; last write wins otherwise.
func (s *GormStore) Touch(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL AND refresh_expires_at > ?", sessionID, time.Now()).
		Update("last_activity_at", time.Now()).Error
}

// Revoke marks the session dead. Zero rows affected is still success.
func (s *GormStore) Revoke(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", &now).Error
}

// RevokeOwned revokes the session only when it belongs to userID, so a
// caller can never stamp revoked_at on a row that is not theirs. Zero
// rows affected is still success.
func (s *GormStore) RevokeOwned(ctx context.Context, userID, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", &now).Error
}

// RevokeAllExcept revokes every live session of a user, optionally
// keeping one (the caller's current session).
func (s *GormStore) RevokeAllExcept(ctx context.Context, userID, keepSessionID string) error {
	now := time.Now()
	query := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID)
	if strings.TrimSpace(keepSessionID) != "" {
		query = query.Where("id <> ?", keepSessionID)
	}
	return query.Update("revoked_at", &now).Error
}

func (s *GormStore) ListActive(ctx context.Context, userID string) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND refresh_expires_at > ?", userID, time.Now()).
		Order("last_activity_at DESC, created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (s *GormStore) ListAllActive(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("revoked_at IS NULL AND refresh_expires_at > ?", time.Now()).
		Order("last_activity_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// SweepExpired soft-deletes sessions whose refresh window has closed.
// Runs out-of-band; never on the request path.
func (s *GormStore) SweepExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("refresh_expires_at <= ?", time.Now()).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("sweep sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
