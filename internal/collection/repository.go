package collection

import (
	"context"

	"hatake-api/internal/db"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type Repository interface {
	// DeleteItems removes the listed items owned by userID and reports how
	// many rows went away. Ids that belong to someone else are ignored.
	DeleteItems(ctx context.Context, userID string, ids []int64) (int64, error)
}

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) DeleteItems(ctx context.Context, userID string, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM collection_items
		WHERE id = ANY($1)
		  AND user_id = $2
	`, pq.Array(ids), userID)
	if err != nil {
		return 0, errors.Wrap(err, "collection: bulk delete")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "collection: rows affected")
	}
	return n, nil
}
