package model

import "time"

// GameID identifies a single recorded attempt within a user's collection
type GameID string

// GameKind names one of the three supported games
type GameKind string

const (
	GameKindMemory     GameKind = "memory"
	GameKindWordSearch GameKind = "word-search"
	GameKindPuzzle     GameKind = "puzzle"
)

// GameKinds lists every kind in display order
var GameKinds = []GameKind{GameKindMemory, GameKindWordSearch, GameKindPuzzle}

// ParseGameKind converts a string into a GameKind
func ParseGameKind(s string) (GameKind, error) {
	for _, k := range GameKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownGameKind
}

// TimedScore is the comparison key for memory and word-search attempts
type TimedScore struct {
	Time   float64 `json:"time"` // seconds, may be fractional
	Errors int     `json:"erros"` // wire name kept for existing clients
}

// Valid reports whether both components are non-negative
func (s TimedScore) Valid() bool {
	return s.Time >= 0 && s.Errors >= 0
}

// MemoryGame is one completed memory game session
type MemoryGame struct {
	ID GameID `json:"id"`
	TimedScore
	CreatedAt time.Time `json:"createdAt"`
}

// WordSearchGame is one completed word-search session
type WordSearchGame struct {
	ID GameID `json:"id"`
	TimedScore
	CreatedAt time.Time `json:"createdAt"`
}

// PuzzleScore is the comparison key for puzzle attempts
type PuzzleScore struct {
	Turns int `json:"turns"`
}

// Valid reports whether the turn count is non-negative
func (s PuzzleScore) Valid() bool {
	return s.Turns >= 0
}

// PuzzleGame is one completed puzzle session
type PuzzleGame struct {
	ID GameID `json:"id"`
	PuzzleScore
	CreatedAt time.Time `json:"createdAt"`
}
