package profile

import (
	"context"
	"database/sql"
	"time"

	"hatake-api/internal/db"

	"github.com/pkg/errors"
)

const statusAccepted = "accepted"

var ErrNotFound = errors.New("user not found")

// Profile is the public view of a user as seen by another signed-in user.
type Profile struct {
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Picture          string    `json:"picture"`
	Bio              string    `json:"bio"`
	CreatedAt        time.Time `json:"created_at"`
	CollectionCount  int       `json:"collection_count"`
	PostCount        int       `json:"post_count"`
	FriendCount      int       `json:"friend_count"`
	IsFriend         bool      `json:"is_friend"`
	FriendshipStatus *string   `json:"friendship_status"`
}

type Repository interface {
	// Profile loads userID's profile, including the friendship between
	// userID and viewerID if one exists.
	Profile(ctx context.Context, viewerID, userID string) (*Profile, error)
}

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Profile(ctx context.Context, viewerID, userID string) (*Profile, error) {
	var (
		p      Profile
		status sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT u.user_id, u.name, COALESCE(u.picture, ''), COALESCE(u.bio, ''), u.created_at,
		       (SELECT COUNT(*) FROM collection_items c WHERE c.user_id = u.user_id),
		       (SELECT COUNT(*) FROM posts p WHERE p.user_id = u.user_id),
		       (SELECT COUNT(*) FROM friendships f
		         WHERE (f.user_id = u.user_id OR f.friend_id = u.user_id)
		           AND f.status = $3),
		       (SELECT f.status FROM friendships f
		         WHERE (f.user_id = $2 AND f.friend_id = u.user_id)
		            OR (f.user_id = u.user_id AND f.friend_id = $2)
		         ORDER BY f.created_at DESC
		         LIMIT 1)
		FROM users u
		WHERE u.user_id = $1
	`, userID, viewerID, statusAccepted).Scan(
		&p.UserID,
		&p.Name,
		&p.Picture,
		&p.Bio,
		&p.CreatedAt,
		&p.CollectionCount,
		&p.PostCount,
		&p.FriendCount,
		&status,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "profile: load")
	}

	if status.Valid {
		p.FriendshipStatus = &status.String
		p.IsFriend = status.String == statusAccepted
	}

	return &p, nil
}
