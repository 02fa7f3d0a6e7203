package credentials

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/edugames/internal/dependencies/mocks"
	"github.com/mcoot/edugames/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
	user    *model.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(Config{
		Secret:     []byte("test-secret"),
		BcryptCost: 4, // bcrypt.MinCost keeps tests fast
	}, s.clock)
	s.user = model.NewUser("u1", "Ana", "ana@x.com", "", s.clock.Now())
}

// Hash / Verify tests

func (s *ServiceSuite) TestHashDiffersFromPassword() {
	hash, err := s.service.Hash("secret123")
	s.Require().NoError(err)
	s.NotEmpty(hash)
	s.NotEqual("secret123", hash)
}

func (s *ServiceSuite) TestHashIsSalted() {
	first, err := s.service.Hash("secret123")
	s.Require().NoError(err)
	second, err := s.service.Hash("secret123")
	s.Require().NoError(err)
	s.NotEqual(first, second)
}

func (s *ServiceSuite) TestHashRejectsOverlongPassword() {
	_, err := s.service.Hash(strings.Repeat("x", 73))
	s.ErrorIs(err, model.ErrInvalidInput)

	hash, err := s.service.Hash(strings.Repeat("x", 72))
	s.Require().NoError(err)
	s.True(s.service.Verify(strings.Repeat("x", 72), hash))
}

func (s *ServiceSuite) TestVerifyRoundTrip() {
	hash, err := s.service.Hash("secret123")
	s.Require().NoError(err)

	s.True(s.service.Verify("secret123", hash))
	s.False(s.service.Verify("secret124", hash))
}

func (s *ServiceSuite) TestVerifyMalformedHash() {
	s.False(s.service.Verify("secret123", "not-a-hash"))
	s.False(s.service.Verify("secret123", ""))
}

// IssueToken / ParseToken tests

func (s *ServiceSuite) TestIssueTokenExpiresAfterTTL() {
	_, expiresAt, err := s.service.IssueToken(s.user)
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(time.Hour), expiresAt)
}

func (s *ServiceSuite) TestParseTokenReturnsClaims() {
	token, _, err := s.service.IssueToken(s.user)
	s.Require().NoError(err)

	claims, err := s.service.ParseToken(token)
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), claims.UserID())
	s.Equal("ana@x.com", claims.Email)
	s.Equal(s.clock.Now().Unix(), claims.IssuedAt.Unix())
}

func (s *ServiceSuite) TestParseTokenRejectsExpired() {
	token, _, err := s.service.IssueToken(s.user)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour + time.Second)

	_, err = s.service.ParseToken(token)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestParseTokenRejectsWrongSecret() {
	other := New(Config{Secret: []byte("other-secret"), BcryptCost: 4}, s.clock)
	token, _, err := other.IssueToken(s.user)
	s.Require().NoError(err)

	_, err = s.service.ParseToken(token)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestParseTokenRejectsOtherAlgorithm() {
	claims := Claims{
		Email: "ana@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.ParseToken(token)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestParseTokenRejectsGarbage() {
	_, err := s.service.ParseToken("not.a.token")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestDefaultsApplied() {
	svc := New(Config{Secret: []byte("x")}, s.clock)
	s.Equal(time.Hour, svc.TokenTTL())
	s.Equal(10, svc.cost)
}
