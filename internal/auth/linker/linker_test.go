package linker

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"hatake-api/internal/auth"
	"hatake-api/internal/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var misty = &auth.Identity{
	Provider:       "google",
	ProviderUserID: "g-123",
	Email:          "misty@example.com",
	EmailVerified:  true,
	Name:           "Misty",
	Picture:        "https://example.com/misty.png",
}

func newLinker(t *testing.T) (*Linker, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	l := New(&db.DB{DB: sqlDB})
	l.newID = func() string { return "user_new" }
	return l, mock
}

func TestLinkKnownSubject(t *testing.T) {
	l, mock := newLinker(t)
	mock.ExpectQuery("WHERE google_id = \\$1").
		WithArgs("g-123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u7"))

	id, err := l.Link(context.Background(), misty)
	require.NoError(t, err)
	require.Equal(t, "u7", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkExistingEmail(t *testing.T) {
	l, mock := newLinker(t)
	mock.ExpectQuery("WHERE google_id").WithArgs("g-123").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("WHERE LOWER\\(email\\)").
		WithArgs("misty@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u8"))
	mock.ExpectExec("UPDATE users").
		WithArgs("u8", "Misty", "https://example.com/misty.png", "g-123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := l.Link(context.Background(), misty)
	require.NoError(t, err)
	require.Equal(t, "u8", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkCreatesUser(t *testing.T) {
	l, mock := newLinker(t)
	mock.ExpectQuery("WHERE google_id").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("WHERE LOWER\\(email\\)").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("user_new", "misty@example.com", "Misty", "https://example.com/misty.png", "g-123", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := l.Link(context.Background(), misty)
	require.NoError(t, err)
	require.Equal(t, "user_new", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkErrors(t *testing.T) {
	l, mock := newLinker(t)

	_, err := l.Link(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilIdentity)

	mock.ExpectQuery("WHERE google_id").WillReturnError(errors.New("conn reset"))
	_, err = l.Link(context.Background(), misty)
	require.ErrorContains(t, err, "linker: find by subject")
	require.NoError(t, mock.ExpectationsWereMet())
}
