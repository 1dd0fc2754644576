package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by every lookup that misses. Callers treat it
// as an authentication failure, never as a server fault.
var ErrNotFound = errors.New("user: not found")

// Store is the only mutator of identity records. Every write is a
// single-row atomic operation so concurrent logins or refreshes for
// the same identity serialize at the database.
type Store interface {
	// FindOrCreate looks up by (provider, providerID) and creates the
	// record on first login. Safe under concurrent first logins: a
	// create that loses the race re-reads the winner's row.
	FindOrCreate(ctx context.Context, provider, providerID, email string) (*User, error)

	FindByProviderAndID(ctx context.Context, provider, providerID string) (*User, error)
	FindByRefreshToken(ctx context.Context, token string) (*User, error)

	// UpdateProfile overwrites only the fields supplied non-empty and
	// returns the updated record.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, imageURL string) (*User, error)

	StoreRefreshToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	Delete(ctx context.Context, id uuid.UUID) error
}
