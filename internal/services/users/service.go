package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/mcoot/edugames/internal/dependencies/clock"
	"github.com/mcoot/edugames/internal/dependencies/ids"
	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/services/credentials"
	"github.com/mcoot/edugames/internal/storage"
)

// Registration is the input for creating an account
type Registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
}

// Profile is the full replacement document for an existing account.
// Game records and achievements are not part of it and survive updates.
type Profile struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
}

// Service manages user accounts
type Service struct {
	storage     storage.Storage
	credentials *credentials.Service
	clock       clock.Clock
	ids         ids.Generator
	validate    *validator.Validate
	logger      *slog.Logger
}

// New creates a new user Service
func New(
	storage storage.Storage,
	credentials *credentials.Service,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:     storage,
		credentials: credentials,
		clock:       clock,
		ids:         ids,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// NormalizeEmail canonicalizes an address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseID validates a raw identifier
func ParseID(raw string) (model.UserID, error) {
	if !ids.Valid(raw) {
		return "", model.ErrInvalidID
	}
	return model.UserID(raw), nil
}

// Create registers a new user with empty game collections
func (s *Service) Create(ctx context.Context, reg Registration) (*model.User, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = NormalizeEmail(reg.Email)
	if err := s.validate.Struct(reg); err != nil {
		return nil, oops.In("users").Wrapf(model.ErrInvalidInput, "%s", err.Error())
	}

	hash, err := s.credentials.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	user := model.NewUser(model.UserID(s.ids.NewID()), reg.Name, reg.Email, hash, s.clock.Now())
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, oops.In("users").With("email", reg.Email).Wrap(err)
	}

	s.logger.Info("user created",
		slog.String("user_id", string(user.ID)),
	)
	return user, nil
}

// GetByID fetches a user by identifier
func (s *Service) GetByID(ctx context.Context, id model.UserID) (*model.User, error) {
	if _, err := ParseID(string(id)); err != nil {
		return nil, err
	}
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, oops.In("users").With("user_id", id).Wrap(err)
	}
	return user, nil
}

// GetByEmail fetches a user by email address
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.storage.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, oops.In("users").Wrap(err)
	}
	return user, nil
}

// ListAll returns every user ordered by creation time
func (s *Service) ListAll(ctx context.Context) ([]*model.User, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, oops.In("users").Wrap(err)
	}
	return users, nil
}

// Update replaces a user's profile. The password is re-hashed.
func (s *Service) Update(ctx context.Context, id model.UserID, profile Profile) (*model.User, error) {
	if _, err := ParseID(string(id)); err != nil {
		return nil, err
	}
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = NormalizeEmail(profile.Email)
	if err := s.validate.Struct(profile); err != nil {
		return nil, oops.In("users").Wrapf(model.ErrInvalidInput, "%s", err.Error())
	}

	hash, err := s.credentials.Hash(profile.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user, err := s.storage.UpdateUser(ctx, id, func(u *model.User) error {
		u.Name = profile.Name
		u.Email = profile.Email
		u.PasswordHash = hash
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, oops.In("users").With("user_id", id).Wrap(err)
	}

	s.logger.Info("user updated",
		slog.String("user_id", string(id)),
	)
	return user, nil
}

// Delete removes a user and everything embedded in it. Deleting a missing user succeeds.
func (s *Service) Delete(ctx context.Context, id model.UserID) error {
	if _, err := ParseID(string(id)); err != nil {
		return err
	}
	if err := s.storage.DeleteUser(ctx, id); err != nil {
		return oops.In("users").With("user_id", id).Wrap(err)
	}

	s.logger.Info("user deleted",
		slog.String("user_id", string(id)),
	)
	return nil
}
