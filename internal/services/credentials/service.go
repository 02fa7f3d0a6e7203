package credentials

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/edugames/internal/dependencies/clock"
	"github.com/mcoot/edugames/internal/model"
)

// Config holds configuration for the credential service
type Config struct {
	// Secret signs bearer tokens. Must be set outside tests.
	Secret     []byte
	BcryptCost int
	TokenTTL   time.Duration
}

// DefaultConfig returns default credential configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
		TokenTTL:   time.Hour,
	}
}

// Claims is the payload carried by an issued token
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token
func (c *Claims) UserID() model.UserID {
	return model.UserID(c.Subject)
}

// Service hashes passwords and issues signed bearer tokens
type Service struct {
	secret []byte
	cost   int
	ttl    time.Duration
	clock  clock.Clock
}

// New creates a new credential Service
func New(cfg Config, clock clock.Clock) *Service {
	defaults := DefaultConfig()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	return &Service{
		secret: cfg.Secret,
		cost:   cfg.BcryptCost,
		ttl:    cfg.TokenTTL,
		clock:  clock,
	}
}

// TokenTTL returns how long issued tokens stay valid
func (s *Service) TokenTTL() time.Duration {
	return s.ttl
}

// Hash returns a salted bcrypt hash of the password.
// Passwords over 72 bytes are rejected as invalid input.
func (s *Service) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", oops.In("credentials").With("bytes", len(password)).Wrapf(model.ErrInvalidInput, "password exceeds 72 bytes")
	}
	if err != nil {
		return "", oops.In("credentials").Code("HASH_FAILED").Wrap(err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash never matches.
func (s *Service) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a token for the user that expires after the configured TTL
func (s *Service) IssueToken(user *model.User) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, oops.In("credentials").Code("SIGN_FAILED").Wrap(err)
	}
	return signed, expiresAt, nil
}

// ParseToken validates the signature, algorithm and expiry of a token
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, model.ErrInvalidToken
	}
	return claims, nil
}
