package user

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is one external login identity. The pair (Provider, ProviderID)
// is the only stable key across logins; Email is informational and may
// be absent depending on the provider.
type User struct {
	ID                 uuid.UUID
	Email              sql.NullString
	Provider           string
	ProviderID         string
	Name               sql.NullString
	ImageURL           sql.NullString
	RefreshToken       sql.NullString
	RefreshTokenExpiry sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Key returns the provider:providerId user key used as token subject.
func (u User) Key() string {
	return u.Provider + ":" + u.ProviderID
}

// WithProfile returns a copy with name/imageURL overwritten only where
// a non-empty value was supplied. Empty means "leave untouched".
func (u User) WithProfile(name, imageURL string) User {
	if name != "" {
		u.Name = sql.NullString{String: name, Valid: true}
	}
	if imageURL != "" {
		u.ImageURL = sql.NullString{String: imageURL, Valid: true}
	}
	return u
}

// WithRefreshToken returns a copy holding the new refresh token and its
// absolute expiry. The previous token is gone: rotation is overwrite.
func (u User) WithRefreshToken(token string, expiry time.Time) User {
	u.RefreshToken = sql.NullString{String: token, Valid: true}
	u.RefreshTokenExpiry = sql.NullTime{Time: expiry, Valid: true}
	return u
}

// WithoutRefreshToken returns a copy with both refresh fields absent.
func (u User) WithoutRefreshToken() User {
	u.RefreshToken = sql.NullString{}
	u.RefreshTokenExpiry = sql.NullTime{}
	return u
}

// NormalizeEmail maps blank provider emails to absent so they never
// collide on the email index.
func NormalizeEmail(email string) sql.NullString {
	email = strings.TrimSpace(email)
	if email == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: email, Valid: true}
}
