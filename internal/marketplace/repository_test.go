package marketplace

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"hatake-api/internal/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewPostgresRepository(&db.DB{DB: sqlDB}), mock
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newRepo(t)
	created := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.status = $1 AND ($2 = '' OR l.game = $2) ORDER BY l.created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs(StatusActive, "mtg", 10, 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"listing_id", "user_id", "card_id", "game", "card_data", "price",
			"currency", "condition", "foil", "quantity", "description", "status",
			"created_at", "name", "picture",
		}).AddRow("listing_1", "u1", "lea-232", "mtg", []byte(`{"name":"Black Lotus"}`), 12.5,
			"EUR", "played", true, 2, "", StatusActive, created, "Ash", ""))

	got, err := repo.List(context.Background(), ListParams{Game: "mtg", Limit: 10, Offset: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "lea-232", got[0].CardID)
	require.Equal(t, 12.5, got[0].Price)
	require.True(t, got[0].Foil)
	require.Equal(t, json.RawMessage(`{"name":"Black Lotus"}`), got[0].CardData)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("INSERT INTO marketplace_listings").
		WithArgs("listing_1", "u1", "c1", "pokemon", []byte(`{}`), 5.0, "USD", "near_mint", false, 1, "", StatusActive).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), NewListing{
		ListingID: "listing_1",
		UserID:    "u1",
		CardID:    "c1",
		Game:      "pokemon",
		CardData:  json.RawMessage(`{}`),
		Price:     5,
		Currency:  "USD",
		Condition: "near_mint",
		Quantity:  1,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryOwnerAndDelete(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM marketplace_listings WHERE listing_id = $1")).
		WithArgs("listing_1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectQuery("FROM marketplace_listings").
		WithArgs("listing_404").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM marketplace_listings WHERE listing_id = $1")).
		WithArgs("listing_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	owner, err := repo.Owner(ctx, "listing_1")
	require.NoError(t, err)
	require.Equal(t, "u1", owner)

	_, err = repo.Owner(ctx, "listing_404")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "listing_1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
