package ids

import (
	"github.com/google/uuid"
)

// Generator produces identifiers for users and recorded games.
// It can be mocked for deterministic tests.
type Generator interface {
	// NewID returns a fresh identifier in canonical UUID string form
	NewID() string
}

// UUIDGenerator implements Generator with random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a random UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Valid reports whether s is a well-formed identifier
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
