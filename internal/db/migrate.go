package db

import (
	"context"
	"database/sql"
)

const schemaMigration = `
CREATE TABLE IF NOT EXISTS users (
    user_id text PRIMARY KEY,
    email text NOT NULL,
    name text NOT NULL DEFAULT '',
    picture text,
    bio text,
    password_hash text,
    google_id text,
    email_verified boolean NOT NULL DEFAULT false,
    is_admin boolean NOT NULL DEFAULT false,
    invite_code text,
    referral_count integer NOT NULL DEFAULT 0,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));

CREATE UNIQUE INDEX IF NOT EXISTS users_invite_code_unique
ON users (invite_code) WHERE invite_code IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS users_google_id_unique
ON users (google_id) WHERE google_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS user_sessions (
    id bigserial PRIMARY KEY,
    user_id text NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    session_token text NOT NULL UNIQUE,
    expires_at timestamptz NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS user_sessions_user_id_idx
ON user_sessions (user_id);

CREATE TABLE IF NOT EXISTS friendships (
    id bigserial PRIMARY KEY,
    user_id text NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    friend_id text NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    status text NOT NULL DEFAULT 'pending',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT friendships_pair_unique UNIQUE (user_id, friend_id)
);

CREATE INDEX IF NOT EXISTS friendships_friend_status_idx
ON friendships (friend_id, status);

CREATE TABLE IF NOT EXISTS marketplace_listings (
    listing_id text PRIMARY KEY,
    user_id text NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    card_id text NOT NULL,
    game text NOT NULL,
    card_data jsonb NOT NULL DEFAULT '{}'::jsonb,
    price numeric(12, 2) NOT NULL,
    currency text NOT NULL DEFAULT 'USD',
    condition text NOT NULL DEFAULT 'near_mint',
    foil boolean NOT NULL DEFAULT false,
    quantity integer NOT NULL DEFAULT 1,
    description text NOT NULL DEFAULT '',
    status text NOT NULL DEFAULT 'active',
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS marketplace_listings_status_game_idx
ON marketplace_listings (status, game, created_at DESC);

CREATE TABLE IF NOT EXISTS collection_items (
    id bigserial PRIMARY KEY,
    user_id text NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    card_id text NOT NULL,
    game text NOT NULL,
    card_data jsonb NOT NULL DEFAULT '{}'::jsonb,
    quantity integer NOT NULL DEFAULT 1,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS collection_items_user_id_idx
ON collection_items (user_id);

CREATE TABLE IF NOT EXISTS posts (
    post_id text PRIMARY KEY,
    user_id text NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    content text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS posts_user_id_idx
ON posts (user_id);
`

// RunMigration creates the tables the API reads and writes. It is idempotent.
func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaMigration)
	return err
}
