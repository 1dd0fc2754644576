package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/VanillaLatte1/project-ant/internal/db"
)

const userColumns = `
	id, email, provider, provider_id, name, image_url,
	refresh_token, refresh_token_expiry, created_at, updated_at
`

// PostgresStore is the durable Store. All queries are single-row
// statements against the users table.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Provider,
		&u.ProviderID,
		&u.Name,
		&u.ImageURL,
		&u.RefreshToken,
		&u.RefreshTokenExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) FindByProviderAndID(ctx context.Context, provider, providerID string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE provider = $1
		  AND provider_id = $2
	`, provider, providerID))
}

func (s *PostgresStore) FindByRefreshToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE refresh_token = $1
	`, token))
}

func (s *PostgresStore) FindOrCreate(ctx context.Context, provider, providerID, email string) (*User, error) {
	u, err := s.FindByProviderAndID(ctx, provider, providerID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u, err = scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, provider, provider_id)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns+`
	`, NormalizeEmail(email), provider, providerID))
	if err == nil {
		return u, nil
	}

	// A concurrent first login for the same (provider, provider_id)
	// won the insert. Read back the winner's row instead of failing
	// the login.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return s.FindByProviderAndID(ctx, provider, providerID)
	}

	return nil, err
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id uuid.UUID, name, imageURL string) (*User, error) {
	// Empty values leave the existing column untouched.
	return scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users
		SET name       = COALESCE(NULLIF($2, ''), name),
		    image_url  = COALESCE(NULLIF($3, ''), image_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, name, imageURL))
}

func (s *PostgresStore) StoreRefreshToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	return s.exec(ctx, `
		UPDATE users
		SET refresh_token        = $2,
		    refresh_token_expiry = $3,
		    updated_at           = NOW()
		WHERE id = $1
	`, id, token, expiry)
}

func (s *PostgresStore) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, `
		UPDATE users
		SET refresh_token        = NULL,
		    refresh_token_expiry = NULL,
		    updated_at           = NOW()
		WHERE id = $1
	`, id)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
