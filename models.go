package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credential record backing a local identity.
//
// Email and Username are both optional but at least one must be set after
// registration; when present each is globally unique, enforced by the store.
// PasswordHash and the reset token fields never leave the package through
// public views.
type User struct {
	bun.BaseModel       `bun:"table:users,alias:usr"`
	ID                  uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email               string         `bun:"email,nullzero,unique" json:"email,omitempty"`
	Username            string         `bun:"username,nullzero,unique" json:"username,omitempty"`
	PasswordHash        string         `bun:"password_hash" json:"-"`
	ResetToken          string         `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExpiresAt *time.Time     `bun:"reset_token_expires_at,nullzero" json:"-"`
	LoginAttempts       int            `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt      *time.Time     `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt          *time.Time     `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	Metadata            map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt           *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt           *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// HasIdentifier reports whether the record carries at least one
// identifying field.
func (u *User) HasIdentifier() bool {
	return u.Email != "" || u.Username != ""
}

// HasActiveResetToken reports whether an unexpired reset token is set.
func (u *User) HasActiveResetToken(now time.Time) bool {
	if u.ResetToken == "" || u.ResetTokenExpiresAt == nil {
		return false
	}
	return now.Before(*u.ResetTokenExpiresAt)
}

// Public returns the sanitized identity view: secret fields stripped,
// safe to return to a client.
func (u *User) Public() *PublicIdentity {
	if u == nil {
		return nil
	}
	return &PublicIdentity{
		ID:       u.ID.String(),
		Email:    u.Email,
		Username: u.Username,
	}
}

// PublicIdentity is the public view of a credential record.
type PublicIdentity struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// NormalizeEmail lowercases and trims an email so lookups and uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
