// Package token issues and verifies the signed access/refresh tokens.
// Verification is pure: it never consults session storage; liveness of
// the underlying session is layered on by the caller.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token families. They are signed with
// independent secrets so that leaking one does not compromise the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Reason enumerates why a token failed verification, so callers can
// distinguish "retry with refresh" from "force re-login".
type Reason string

const (
	ReasonExpired      Reason = "expired"
	ReasonBadSignature Reason = "bad-signature"
	ReasonMalformed    Reason = "malformed"
	ReasonWrongKind    Reason = "wrong-kind"
)

// InvalidError is returned by Verify for any rejected token.
type InvalidError struct {
	Reason Reason
}

func (e *InvalidError) Error() string { return "invalid token: " + string(e.Reason) }

// Claims is the signed JWT payload.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"sessionId"`
	TokenType Kind   `json:"type"`
	jwtlib.RegisteredClaims
}

// Issuer signs and verifies tokens with per-kind secrets.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// New creates an Issuer. Both secrets must be non-empty; the caller
// (config validation) guarantees that before the server accepts traffic.
func New(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token: signing secrets must not be empty")
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// Issue signs a token of the given kind bound to a user and session.
// It returns the signed string and its expiry instant.
func (i *Issuer) Issue(userID, email, role, sessionID string, kind Kind) (string, time.Time, error) {
	ttl := i.accessTTL
	secret := i.accessSecret
	if kind == KindRefresh {
		ttl = i.refreshTTL
		secret = i.refreshSecret
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Email:     email,
		Role:      role,
		SessionID: sessionID,
		TokenType: kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, expiry, issuer, kind, and required-claim
// presence. Any failure yields *InvalidError with an enumerated reason.
// The signing secret is selected by the token's claimed kind, then the
// claimed kind is checked against want, so a refresh token presented
// where an access token is expected reports wrong-kind rather than a
// signature failure.
func (i *Issuer) Verify(raw string, want Kind) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(raw, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		claims, ok := t.Claims.(*Claims)
		if !ok {
			return nil, errors.New("unexpected claims type")
		}
		if claims.TokenType == KindRefresh {
			return i.refreshSecret, nil
		}
		return i.accessSecret, nil
	}, jwtlib.WithIssuer(i.issuer))
	if err != nil {
		return nil, &InvalidError{Reason: classify(err)}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, &InvalidError{Reason: ReasonMalformed}
	}
	if claims.Subject == "" || claims.SessionID == "" || claims.ExpiresAt == nil {
		return nil, &InvalidError{Reason: ReasonMalformed}
	}
	if claims.TokenType != want {
		return nil, &InvalidError{Reason: ReasonWrongKind}
	}
	return claims, nil
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return ReasonBadSignature
	default:
		return ReasonMalformed
	}
}
