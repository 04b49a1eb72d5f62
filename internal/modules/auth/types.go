package auth

import "time"

type LoginDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"     binding:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// userPayload is the user shape returned on login/register.
type userPayload struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	MFAEnabled     bool   `json:"mfaEnabled"`
}

type sessionPayload struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	IssuedAt       time.Time  `json:"issuedAt"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	RevokedAt      *time.Time `json:"revokedAt,omitempty"`
	IP             string     `json:"ipAddress"`
	UserAgent      string     `json:"userAgent"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	Current        bool       `json:"current"`
}

// The login rejection message is identical for unknown email and wrong
// password to prevent account enumeration.
const msgInvalidCredentials = "invalid email or password"

const msgAccountDisabled = "account is disabled"
