package friends

import (
	"context"
	"time"

	"hatake-api/internal/db"

	"github.com/pkg/errors"
)

const StatusPending = "pending"

// Request is a pending friend request, described by its sender.
type Request struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	// PendingRequests lists requests addressed to userID, newest first.
	PendingRequests(ctx context.Context, userID string) ([]Request, error)
}

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) PendingRequests(ctx context.Context, userID string) ([]Request, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.user_id, u.name, COALESCE(u.picture, ''), f.created_at
		FROM friendships f
		JOIN users u ON f.user_id = u.user_id
		WHERE f.friend_id = $1
		  AND f.status = $2
		ORDER BY f.created_at DESC
	`, userID, StatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "friends: query pending requests")
	}
	defer rows.Close()

	requests := make([]Request, 0)
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.UserID, &req.Name, &req.Picture, &req.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "friends: scan pending request")
		}
		requests = append(requests, req)
	}

	return requests, errors.Wrap(rows.Err(), "friends: iterate pending requests")
}
