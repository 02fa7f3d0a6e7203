package model

import "time"

// UserID uniquely identifies a user (UUID string form)
type UserID string

// User is the aggregate root for a player account.
// Game records and achievements are embedded and live and die with the user.
type User struct {
	ID           UserID    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"` // bcrypt hash, never exposed by the API
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Version is bumped on every write and drives optimistic concurrency
	Version int64 `json:"version"`

	Achievements    []Achievement    `json:"achievements"`
	MemoryGames     []MemoryGame     `json:"memoryGames"`
	WordSearchGames []WordSearchGame `json:"wordSearchGames"`
	PuzzleGames     []PuzzleGame     `json:"puzzleGames"`
}

// NewUser creates a user with empty embedded collections
func NewUser(id UserID, name, email, passwordHash string, now time.Time) *User {
	return &User{
		ID:              id,
		Name:            name,
		Email:           email,
		PasswordHash:    passwordHash,
		CreatedAt:       now,
		UpdatedAt:       now,
		Achievements:    []Achievement{},
		MemoryGames:     []MemoryGame{},
		WordSearchGames: []WordSearchGame{},
		PuzzleGames:     []PuzzleGame{},
	}
}

// Clone returns a deep copy of the user so callers never share slices with a store
func (u *User) Clone() *User {
	c := *u
	c.Achievements = append(make([]Achievement, 0, len(u.Achievements)), u.Achievements...)
	c.MemoryGames = append(make([]MemoryGame, 0, len(u.MemoryGames)), u.MemoryGames...)
	c.WordSearchGames = append(make([]WordSearchGame, 0, len(u.WordSearchGames)), u.WordSearchGames...)
	c.PuzzleGames = append(make([]PuzzleGame, 0, len(u.PuzzleGames)), u.PuzzleGames...)
	return &c
}

// Normalize replaces nil collections with empty ones.
// Documents decoded from storage may omit empty arrays.
func (u *User) Normalize() {
	if u.Achievements == nil {
		u.Achievements = []Achievement{}
	}
	if u.MemoryGames == nil {
		u.MemoryGames = []MemoryGame{}
	}
	if u.WordSearchGames == nil {
		u.WordSearchGames = []WordSearchGame{}
	}
	if u.PuzzleGames == nil {
		u.PuzzleGames = []PuzzleGame{}
	}
}

// AchievementName identifies a badge type; there is one per game kind
type AchievementName string

const (
	AchievementMemory     AchievementName = "jogoMemoria"
	AchievementWordSearch AchievementName = "cacaPalavras"
	AchievementPuzzle     AchievementName = "quebraCabeca"
)

// Achievement is a badge unlocked by submitting a novel attempt
type Achievement struct {
	Name       AchievementName `json:"name"`
	UnlockedAt time.Time       `json:"date"`
}
