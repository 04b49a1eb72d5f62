package auth

import (
	"time"

	"github.com/worksite/core/internal/models"
	"github.com/worksite/core/internal/pkg/hasher"
)

// Outcome tags the result of a login, registration, or refresh attempt.
// Handlers must switch over every branch; business outcomes are never
// smuggled through the error return.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeInvalidInput       Outcome = "invalid_input"
	OutcomeInvalidCredentials Outcome = "invalid_credentials"
	OutcomeAccountDisabled    Outcome = "account_disabled"
	OutcomeWeakPassword       Outcome = "weak_password"
	OutcomeDuplicateEmail     Outcome = "duplicate_email"
	OutcomeStoreUnavailable   Outcome = "store_unavailable"
)

// TokenPair is the ephemeral product of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	SessionID    string    `json:"-"`
}

// Result is the tagged outcome of an authentication operation.
// Err holds the underlying cause for OutcomeStoreUnavailable; it is for
// logging only and never reaches the client.
type Result struct {
	Outcome Outcome
	Message string
	User    *models.User
	Tokens  *TokenPair
	Issues  []hasher.Issue
	Err     error
}

func success(u *models.User, t *TokenPair) Result {
	return Result{Outcome: OutcomeSuccess, User: u, Tokens: t}
}

func rejected(outcome Outcome, message string) Result {
	return Result{Outcome: outcome, Message: message}
}

func unavailable(err error) Result {
	return Result{Outcome: OutcomeStoreUnavailable, Message: "service temporarily unavailable", Err: err}
}
