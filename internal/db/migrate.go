package db

import (
	"context"
	"database/sql"
)

const bootstrapMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text,
    provider text NOT NULL,
    provider_id text NOT NULL,
    name text,
    image_url text,
    refresh_token text,
    refresh_token_expiry timestamptz,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT users_provider_unique
        UNIQUE (provider, provider_id)
);

CREATE INDEX IF NOT EXISTS users_email_idx
ON users (email)
WHERE email IS NOT NULL;

CREATE INDEX IF NOT EXISTS users_refresh_token_idx
ON users (refresh_token)
WHERE refresh_token IS NOT NULL;
`

func RunBootstrapMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, bootstrapMigration)
	return err
}
