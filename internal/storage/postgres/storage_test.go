package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/storage"
)

var (
	insertSQL    = regexp.QuoteMeta(`INSERT INTO users (id, email, doc, version, created_at) VALUES ($1, $2, $3, $4, $5)`)
	selectByID   = regexp.QuoteMeta(`SELECT doc FROM users WHERE id = $1`)
	selectByMail = regexp.QuoteMeta(`SELECT doc FROM users WHERE email = $1`)
	selectAll    = regexp.QuoteMeta(`SELECT doc FROM users ORDER BY created_at, id`)
	selectForUpd = regexp.QuoteMeta(`SELECT doc, version FROM users WHERE id = $1`)
	updateSQL    = regexp.QuoteMeta(`UPDATE users SET email = $2, doc = $3, version = $4 WHERE id = $1 AND version = $5`)
	deleteSQL    = regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Storage) {
	t.Helper()
	conn, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	cfg := DefaultConfig()
	cfg.Retry = storage.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond}
	return conn, NewWithConn(conn, cfg)
}

func testUser() *model.User {
	return model.NewUser("u1", "Ana", "ana@x.com", "hash", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func docOf(t *testing.T, u *model.User) []byte {
	t.Helper()
	doc, err := json.Marshal(u)
	require.NoError(t, err)
	return doc
}

func TestEnsureSchema(t *testing.T) {
	conn, s := newMock(t)
	conn.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, conn.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	user := testUser()

	t.Run("successfully created", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectExec(insertSQL).
			WithArgs("u1", "ana@x.com", pgxmock.AnyArg(), int64(0), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, s.CreateUser(ctx, user))
		assert.NoError(t, conn.ExpectationsWereMet())
	})
	t.Run("unique violation", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectExec(insertSQL).
			WithArgs("u1", "ana@x.com", pgxmock.AnyArg(), int64(0), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		assert.ErrorIs(t, s.CreateUser(ctx, user), model.ErrEmailTaken)
	})
	t.Run("db error", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectExec(insertSQL).
			WithArgs("u1", "ana@x.com", pgxmock.AnyArg(), int64(0), pgxmock.AnyArg()).
			WillReturnError(errors.New("db error"))

		err := s.CreateUser(ctx, user)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrEmailTaken)
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	user := testUser()

	t.Run("found", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectQuery(selectByID).WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(docOf(t, user)))

		got, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.Name)
		assert.NotNil(t, got.WordSearchGames)
	})
	t.Run("not found", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectQuery(selectByID).WithArgs("u1").WillReturnError(pgx.ErrNoRows)

		_, err := s.GetUser(ctx, "u1")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectQuery(selectByID).WithArgs("u1").WillReturnError(errors.New("db error"))

		_, err := s.GetUser(ctx, "u1")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()
	conn, s := newMock(t)
	conn.ExpectQuery(selectByMail).WithArgs("ana@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(docOf(t, testUser())))
	conn.ExpectQuery(selectByMail).WithArgs("bob@x.com").WillReturnError(pgx.ErrNoRows)

	got, err := s.GetUserByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, model.UserID("u1"), got.ID)

	_, err = s.GetUserByEmail(ctx, "bob@x.com")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	assert.NoError(t, conn.ExpectationsWereMet())
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	first := testUser()
	second := model.NewUser("u2", "Bia", "bia@x.com", "hash", first.CreatedAt.Add(time.Minute))

	conn, s := newMock(t)
	conn.ExpectQuery(selectAll).WillReturnRows(
		pgxmock.NewRows([]string{"doc"}).AddRow(docOf(t, first)).AddRow(docOf(t, second)),
	)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ana", users[0].Name)
	assert.Equal(t, "Bia", users[1].Name)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	user.Version = 3

	rename := func(u *model.User) error {
		u.Name = "Ana Maria"
		return nil
	}

	t.Run("applies mutation and bumps version", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectQuery(selectForUpd).WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"doc", "version"}).AddRow(docOf(t, user), int64(3)))
		conn.ExpectExec(updateSQL).
			WithArgs("u1", "ana@x.com", pgxmock.AnyArg(), int64(4), int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		got, err := s.UpdateUser(ctx, "u1", rename)
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", got.Name)
		assert.Equal(t, int64(4), got.Version)
		assert.NoError(t, conn.ExpectationsWereMet())
	})
	t.Run("retries after a lost race", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectQuery(selectForUpd).WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"doc", "version"}).AddRow(docOf(t, user), int64(3)))
		conn.ExpectExec(updateSQL).
			WithArgs("u1", "ana@x.com", pgxmock.AnyArg(), int64(4), int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		conn.ExpectQuery(selectForUpd).WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"doc", "version"}).AddRow(docOf(t, user), int64(4)))
		conn.ExpectExec(updateSQL).
			WithArgs("u1", "ana@x.com", pgxmock.AnyArg(), int64(5), int64(4)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		got, err := s.UpdateUser(ctx, "u1", rename)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Version)
		assert.NoError(t, conn.ExpectationsWereMet())
	})
	t.Run("gives up after the retry budget", func(t *testing.T) {
		conn, s := newMock(t)
		for i := 0; i < 3; i++ {
			conn.ExpectQuery(selectForUpd).WithArgs("u1").
				WillReturnRows(pgxmock.NewRows([]string{"doc", "version"}).AddRow(docOf(t, user), int64(3)))
			conn.ExpectExec(updateSQL).
				WithArgs("u1", "ana@x.com", pgxmock.AnyArg(), int64(4), int64(3)).
				WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		}

		_, err := s.UpdateUser(ctx, "u1", rename)
		assert.ErrorIs(t, err, storage.ErrConcurrentUpdate)
	})
	t.Run("email taken", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectQuery(selectForUpd).WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"doc", "version"}).AddRow(docOf(t, user), int64(3)))
		conn.ExpectExec(updateSQL).
			WithArgs("u1", "bia@x.com", pgxmock.AnyArg(), int64(4), int64(3)).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		_, err := s.UpdateUser(ctx, "u1", func(u *model.User) error {
			u.Email = "bia@x.com"
			return nil
		})
		assert.ErrorIs(t, err, model.ErrEmailTaken)
	})
	t.Run("not found", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectQuery(selectForUpd).WithArgs("u1").WillReturnError(pgx.ErrNoRows)

		_, err := s.UpdateUser(ctx, "u1", rename)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectExec(deleteSQL).WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
		assert.NoError(t, s.DeleteUser(ctx, "u1"))
	})
	t.Run("missing user is not an error", func(t *testing.T) {
		conn, s := newMock(t)
		conn.ExpectExec(deleteSQL).WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
		assert.NoError(t, s.DeleteUser(ctx, "u1"))
	})
}
