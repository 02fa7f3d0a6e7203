package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each user is a single JSON document; UpdateUser uses WATCH/MULTI for optimistic concurrency.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	stored := user.Clone()
	stored.Normalize()

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	// Claim the email first; SETNX is the unique index
	claimed, err := s.client.SetNX(ctx, emailIndexKey(stored.Email), string(stored.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailTaken
	}

	key := userKey(stored.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, usersIndexKey(), key)
		return nil
	})
	if err != nil {
		// Release the email claim so a retry can succeed
		_ = s.client.Del(ctx, emailIndexKey(stored.Email)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.getUser(ctx, s.client, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	// Look up user ID from email index
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	keys, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.User{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(values))
	for _, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue // Deleted between SMEMBERS and MGET
		}
		user, err := decodeUser([]byte(raw))
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id model.UserID, fn storage.MutateFunc) (*model.User, error) {
	key := userKey(id)
	var updated *model.User

	err := storage.RetryOnConflict(ctx, s.cfg.Retry, func(ctx context.Context) error {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := s.getUser(ctx, tx, id)
			if err != nil {
				return err
			}

			next := current.Clone()
			if err := fn(next); err != nil {
				return err
			}
			next.ID = current.ID
			next.Version = current.Version + 1
			next.Normalize()

			emailChanged := next.Email != current.Email
			if emailChanged {
				newIdx := emailIndexKey(next.Email)
				if err := tx.Watch(ctx, newIdx).Err(); err != nil {
					return err
				}
				owner, err := tx.Get(ctx, newIdx).Result()
				switch {
				case err == nil && owner != string(id):
					return model.ErrEmailTaken
				case err != nil && !errors.Is(err, redis.Nil):
					return err
				}
			}

			data, err := json.Marshal(next)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				if emailChanged {
					pipe.Del(ctx, emailIndexKey(current.Email))
					pipe.Set(ctx, emailIndexKey(next.Email), string(id), 0)
				}
				return nil
			})
			if err != nil {
				return err
			}

			updated = next
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			return storage.ErrWriteConflict
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	key := userKey(id)

	return storage.RetryOnConflict(ctx, s.cfg.Retry, func(ctx context.Context) error {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			user, err := s.getUser(ctx, tx, id)
			if errors.Is(err, model.ErrUserNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			// Document, index entry and set membership go together
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.Del(ctx, emailIndexKey(user.Email))
				pipe.SRem(ctx, usersIndexKey(), key)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			return storage.ErrWriteConflict
		}
		return err
	})
}

func (s *Storage) getUser(ctx context.Context, g getter, id model.UserID) (*model.User, error) {
	data, err := g.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return decodeUser(data)
}

func decodeUser(data []byte) (*model.User, error) {
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	user.Normalize()
	return &user, nil
}
