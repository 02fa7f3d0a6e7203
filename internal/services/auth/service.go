package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/services/credentials"
	"github.com/mcoot/edugames/internal/services/users"
)

// Token is the result of a successful login
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      model.UserID
}

// Service handles login and bearer-token authentication
type Service struct {
	users       *users.Service
	credentials *credentials.Service
	logger      *slog.Logger
}

// New creates a new auth Service
func New(users *users.Service, credentials *credentials.Service, logger *slog.Logger) *Service {
	return &Service{
		users:       users,
		credentials: credentials,
		logger:      logger,
	}
}

// Login checks an email and password and issues a bearer token.
// An unknown email and a wrong password fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrUnauthorized
		}
		return nil, oops.In("auth").Wrap(err)
	}

	if !s.credentials.Verify(password, user.PasswordHash) {
		s.logger.Warn("login rejected",
			slog.String("user_id", string(user.ID)),
		)
		return nil, model.ErrUnauthorized
	}

	accessToken, expiresAt, err := s.credentials.IssueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.String("user_id", string(user.ID)),
	)
	return &Token{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
	}, nil
}

// Authenticate validates a bearer token and returns its claims
func (s *Service) Authenticate(token string) (*credentials.Claims, error) {
	if token == "" {
		return nil, model.ErrInvalidToken
	}
	return s.credentials.ParseToken(token)
}
