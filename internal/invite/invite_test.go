package invite

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"hatake-api/internal/db"
	"hatake-api/internal/testsupport"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

type fakeRepo map[string]*Inviter

func (f fakeRepo) FindInviter(_ context.Context, code string) (*Inviter, error) {
	if code == "explode" {
		return nil, errors.New("db down")
	}
	inv, ok := f[code]
	if !ok {
		return nil, ErrNotFound
	}
	return inv, nil
}

func setup() http.Handler {
	engine, public, _ := testsupport.Router(testsupport.Tokens{})
	NewHandler(fakeRepo{"HATAKE42": {Name: "Ash", Picture: "ash.png", ReferralCount: 3}}).RegisterRoutes(public)
	return engine
}

func TestValidateInvite(t *testing.T) {
	rec := testsupport.Do(setup(), http.MethodGet, "/api/invite/HATAKE42", "", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"inviter":{"name":"Ash","picture":"ash.png","referralCount":3}}`, rec.Body.String())
}

func TestValidateInviteUnknown(t *testing.T) {
	rec := testsupport.Do(setup(), http.MethodGet, "/api/invite/nope", "", "", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"Invalid invite code"}`, rec.Body.String())
}

func TestValidateInviteStoreFailure(t *testing.T) {
	rec := testsupport.Do(setup(), http.MethodGet, "/api/invite/explode", "", "", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

const inviterQuery = "SELECT name, COALESCE(picture, ''), referral_count FROM users WHERE invite_code = $1"

func TestFindInviter(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	repo := NewPostgresRepository(&db.DB{DB: sqlDB})

	mock.ExpectQuery(regexp.QuoteMeta(inviterQuery)).
		WithArgs("HATAKE42").
		WillReturnRows(sqlmock.NewRows([]string{"name", "picture", "referral_count"}).AddRow("Ash", "", 7))
	mock.ExpectQuery(regexp.QuoteMeta(inviterQuery)).
		WithArgs("' OR 1=1 --").
		WillReturnError(sql.ErrNoRows)

	inv, err := repo.FindInviter(context.Background(), "HATAKE42")
	require.NoError(t, err)
	require.Equal(t, &Inviter{Name: "Ash", ReferralCount: 7}, inv)

	_, err = repo.FindInviter(context.Background(), "' OR 1=1 --")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
