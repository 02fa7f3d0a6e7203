package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/edugames/internal/dependencies/mocks"
	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/services/credentials"
	"github.com/mcoot/edugames/internal/services/users"
	"github.com/mcoot/edugames/internal/storage"
	"github.com/mcoot/edugames/internal/storage/memory"
	"github.com/mcoot/edugames/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage     *memory.Storage
	clock       *mocks.MockClock
	credentials *credentials.Service
	users       *users.Service
	service     *Service
	ctx         context.Context
	ana         *model.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.credentials = credentials.New(credentials.Config{Secret: []byte("test"), BcryptCost: 4}, s.clock)
	s.users = users.New(s.storage, s.credentials, s.clock, mocks.NewMockIDs(), testutil.NopLogger())
	s.service = New(s.users, s.credentials, testutil.NopLogger())
	s.ctx = context.Background()

	var err error
	s.ana, err = s.users.Create(s.ctx, users.Registration{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	s.Require().NoError(err)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	token, err := s.service.Login(s.ctx, "ana@x.com", "secret1")
	s.Require().NoError(err)

	s.NotEmpty(token.AccessToken)
	s.Equal(s.ana.ID, token.UserID)
	s.Equal(s.clock.Now().Add(time.Hour), token.ExpiresAt)
}

func (s *ServiceSuite) TestLoginTokenCarriesIdentity() {
	token, err := s.service.Login(s.ctx, "ana@x.com", "secret1")
	s.Require().NoError(err)

	claims, err := s.service.Authenticate(token.AccessToken)
	s.Require().NoError(err)
	s.Equal(s.ana.ID, claims.UserID())
	s.Equal("ana@x.com", claims.Email)
}

func (s *ServiceSuite) TestLoginIgnoresEmailCase() {
	_, err := s.service.Login(s.ctx, " ANA@x.com", "secret1")
	s.NoError(err)
}

func (s *ServiceSuite) TestLoginSeesEmailChanges() {
	_, err := s.users.Update(s.ctx, s.ana.ID, users.Profile{Name: "Ana", Email: "ana@y.com", Password: "secret1"})
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "ana@x.com", "secret1")
	s.ErrorIs(err, model.ErrUnauthorized)

	token, err := s.service.Login(s.ctx, "ANA@y.com", "secret1")
	s.Require().NoError(err)
	s.Equal(s.ana.ID, token.UserID)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, err := s.service.Login(s.ctx, "ana@x.com", "wrong")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestLoginRejectionLogsWarningWithoutPassword() {
	logger, buf := testutil.CaptureLogger()
	service := New(s.users, s.credentials, logger)

	_, err := service.Login(s.ctx, "ana@x.com", "wrong-password")
	s.Require().ErrorIs(err, model.ErrUnauthorized)

	entries := buf.Entries()
	s.Require().Len(entries, 1)
	s.Equal("WARN", entries[0]["level"])
	s.Equal("login rejected", entries[0]["msg"])
	s.NotContains(buf.String(), "wrong-password")
}

func (s *ServiceSuite) TestLoginFailsWithUnknownEmail() {
	_, err := s.service.Login(s.ctx, "nobody@x.com", "secret1")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestLoginSurfacesStorageFailures() {
	directory := users.New(failingStorage{s.storage}, s.credentials, s.clock, mocks.NewMockIDs(), testutil.NopLogger())
	service := New(directory, s.credentials, testutil.NopLogger())

	_, err := service.Login(s.ctx, "ana@x.com", "secret1")
	s.Require().Error(err)
	s.NotErrorIs(err, model.ErrUnauthorized)
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateRejectsEmptyToken() {
	_, err := s.service.Authenticate("")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestAuthenticateRejectsExpiredToken() {
	token, err := s.service.Login(s.ctx, "ana@x.com", "secret1")
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)

	_, err = s.service.Authenticate(token.AccessToken)
	s.ErrorIs(err, model.ErrInvalidToken)
}

type failingStorage struct {
	storage.Storage
}

func (failingStorage) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, errors.New("connection refused")
}
