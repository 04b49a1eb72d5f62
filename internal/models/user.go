package models

import "time"

// Roles assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the credential store. Emails are stored
// lowercase; uniqueness is enforced by the index.
type User struct {
	Base
	Email          string     `json:"email"           gorm:"uniqueIndex;not null"`
	Name           string     `json:"name"`
	PasswordHash   string     `json:"-"               gorm:"not null"`
	Role           string     `json:"role"            gorm:"type:varchar(16);default:user;not null"`
	IsActive       bool       `json:"is_active"       gorm:"default:true;not null"`
	ProfilePicture string     `json:"profile_picture"`
	MFAEnabled     bool       `json:"mfa_enabled"     gorm:"default:false;not null"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	LastLoginIP    string     `json:"-"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
