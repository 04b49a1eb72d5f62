package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/worksite/core/internal/models"
	"github.com/worksite/core/internal/pkg/hasher"
	pkgmail "github.com/worksite/core/internal/pkg/mail"
	"github.com/worksite/core/internal/pkg/session"
	"github.com/worksite/core/internal/pkg/token"
	"go.uber.org/zap"
)

// Service orchestrates login, registration, refresh, and logout. All
// dependencies are injected at construction; the service holds no other
// state, so concurrent requests need no coordination.
type Service struct {
	users    UserRepository
	sessions session.Store
	issuer   *token.Issuer
	mailer   *pkgmail.Sender
	logger   *zap.Logger
}

func NewService(users UserRepository, sessions session.Store, issuer *token.Issuer, mailer *pkgmail.Sender, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		mailer:   mailer,
		logger:   logger,
	}
}

// Login runs the gate sequence: input presence, user lookup, password
// verification, account activity. The password hash is always compared,
// even when the account is unknown or disabled, so response timing and
// outcome never leak account state to a caller without the credential.
func (s *Service) Login(ctx context.Context, dto LoginDTO, meta session.DeviceMetadata) Result {
	email := normalizeEmail(dto.Email)
	if email == "" || dto.Password == "" {
		return rejected(OutcomeInvalidInput, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return unavailable(err)
	}

	// Unknown account: burn a bcrypt compare against a throwaway hash so
	// the miss is not observable from latency, then reject with the same
	// message as a wrong password.
	if user == nil {
		_, _ = hasher.Verify(dto.Password, dummyHash)
		return rejected(OutcomeInvalidCredentials, msgInvalidCredentials)
	}

	ok, err := hasher.Verify(dto.Password, user.PasswordHash)
	if err != nil {
		// Corrupted stored hash; never report as a wrong password.
		s.logger.Error("corrupt credential hash", zap.String("user_id", user.ID), zap.Error(err))
		return unavailable(err)
	}
	if !ok {
		return rejected(OutcomeInvalidCredentials, msgInvalidCredentials)
	}
	if !user.IsActive {
		return rejected(OutcomeAccountDisabled, msgAccountDisabled)
	}

	tokens, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return unavailable(err)
	}

	now := time.Now()
	if err := s.users.RecordLogin(ctx, user.ID, meta.IP, now); err != nil {
		// Login already succeeded; a failed lastLoginAt update is not
		// worth rejecting the attempt over.
		s.logger.Warn("record login failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	return success(user, tokens)
}

// Register validates input, enforces the password policy, and inserts
// the account. No session is issued; an explicit login follows.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) Result {
	email := normalizeEmail(dto.Email)
	name := strings.TrimSpace(dto.Name)
	if email == "" || dto.Password == "" || name == "" {
		return rejected(OutcomeInvalidInput, "email, password, and name are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return rejected(OutcomeInvalidInput, "invalid email address")
	}

	if issues := hasher.CheckStrength(dto.Password); len(issues) > 0 {
		return Result{
			Outcome: OutcomeWeakPassword,
			Message: "password does not meet the strength policy",
			Issues:  issues,
		}
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return unavailable(err)
	}
	if existing != nil {
		return rejected(OutcomeDuplicateEmail, "email already registered")
	}

	hash, err := hasher.Hash(dto.Password)
	if err != nil {
		return unavailable(err)
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// Lost the race against a concurrent registration.
			return rejected(OutcomeDuplicateEmail, "email already registered")
		}
		return unavailable(err)
	}

	s.sendWelcome(user)
	return success(user, nil)
}

// Refresh mints a new access token from a refresh token whose session is
// still live; the refresh token itself is returned unchanged.
func (s *Service) Refresh(ctx context.Context, refreshToken string) Result {
	claims, err := s.issuer.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return rejected(OutcomeInvalidCredentials, "invalid refresh token")
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return unavailable(err)
	}
	if sess == nil {
		return rejected(OutcomeInvalidCredentials, "session revoked or expired")
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return unavailable(err)
	}
	if user == nil {
		return rejected(OutcomeInvalidCredentials, "invalid refresh token")
	}
	if !user.IsActive {
		return rejected(OutcomeAccountDisabled, msgAccountDisabled)
	}

	access, expiresAt, err := s.issuer.Issue(user.ID, user.Email, user.Role, sess.ID, token.KindAccess)
	if err != nil {
		return unavailable(err)
	}
	if err := s.sessions.Touch(ctx, sess.ID); err != nil {
		s.logger.Warn("touch session failed", zap.String("session_id", sess.ID), zap.Error(err))
	}

	return success(user, &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		SessionID:    sess.ID,
	})
}

// Logout revokes the session. Idempotent: a second logout is a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *Service) issueSession(ctx context.Context, user *models.User, meta session.DeviceMetadata) (*TokenPair, error) {
	sess, err := s.sessions.Create(ctx, user.ID, meta, s.issuer.AccessTTL(), s.issuer.RefreshTTL())
	if err != nil {
		return nil, err
	}

	access, expiresAt, err := s.issuer.Issue(user.ID, user.Email, user.Role, sess.ID, token.KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.issuer.Issue(user.ID, user.Email, user.Role, sess.ID, token.KindRefresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		SessionID:    sess.ID,
	}, nil
}

func (s *Service) sendWelcome(user *models.User) {
	if s.mailer == nil {
		return
	}
	msg, err := pkgmail.WelcomeMessage(user.Email, user.Name)
	if err != nil {
		s.logger.Warn("render welcome mail failed", zap.Error(err))
		return
	}
	go func() {
		if err := s.mailer.Send(msg); err != nil {
			s.logger.Warn("send welcome mail failed", zap.Error(err))
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dummyHash is a valid bcrypt hash of a random string, used to equalize
// the cost of unknown-account logins.
const dummyHash = "$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
