package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/storage"
)

// Conn is the subset of pgxpool.Pool used by Storage. pgxmock pools satisfy it too.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	doc        JSONB NOT NULL,
	version    BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// Storage keeps each User as a JSONB document in a single table.
// The email column carries the unique index; version drives optimistic concurrency.
type Storage struct {
	conn  Conn
	cfg   Config
	close func()
}

// New connects a pool, verifies it and makes sure the schema exists
func New(cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &Storage{conn: pool, cfg: cfg, close: pool.Close}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithConn creates a storage over an existing connection (for testing)
func NewWithConn(conn Conn, cfg Config) *Storage {
	return &Storage{conn: conn, cfg: cfg}
}

// Close releases the pool if this storage owns one
func (s *Storage) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// EnsureSchema creates the users table if it is missing
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, schema); err != nil {
		return oops.With("operation", "ensure schema").Wrap(err)
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	stored := user.Clone()
	stored.Normalize()

	doc, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	_, err = s.conn.Exec(ctx,
		`INSERT INTO users (id, email, doc, version, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(stored.ID), stored.Email, doc, stored.Version, stored.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		return oops.With("operation", "create user").Wrap(err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.conn.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1`, string(id))
	return scanUser(row)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.conn.QueryRow(ctx, `SELECT doc FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.conn.Query(ctx, `SELECT doc FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, oops.With("operation", "list users").Wrap(err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, oops.With("operation", "scan user row").Wrap(err)
		}
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate users").Wrap(err)
	}
	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id model.UserID, fn storage.MutateFunc) (*model.User, error) {
	var updated *model.User

	err := storage.RetryOnConflict(ctx, s.cfg.Retry, func(ctx context.Context) error {
		var doc []byte
		var version int64
		err := s.conn.QueryRow(ctx, `SELECT doc, version FROM users WHERE id = $1`, string(id)).Scan(&doc, &version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrUserNotFound
			}
			return oops.With("operation", "load user for update").Wrap(err)
		}

		current, err := decodeUser(doc)
		if err != nil {
			return err
		}
		// The column is authoritative for concurrency checks
		current.Version = version

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.ID = current.ID
		next.Version = version + 1
		next.Normalize()

		nextDoc, err := json.Marshal(next)
		if err != nil {
			return err
		}

		tag, err := s.conn.Exec(ctx,
			`UPDATE users SET email = $2, doc = $3, version = $4 WHERE id = $1 AND version = $5`,
			string(id), next.Email, nextDoc, next.Version, version,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return model.ErrEmailTaken
			}
			return oops.With("operation", "update user").Wrap(err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrWriteConflict
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, string(id)); err != nil {
		return oops.With("operation", "delete user").Wrap(err)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, oops.With("operation", "get user").Wrap(err)
	}
	return decodeUser(doc)
}

func decodeUser(doc []byte) (*model.User, error) {
	var user model.User
	if err := json.Unmarshal(doc, &user); err != nil {
		return nil, oops.With("operation", "decode user document").Wrap(err)
	}
	user.Normalize()
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
