package response

import (
	"time"

	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/services/auth"
)

// User represents a user in API responses. The password hash is never included.
type User struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
	Achievements    []model.Achievement    `json:"achievements"`
	MemoryGames     []model.MemoryGame     `json:"memoryGames"`
	WordSearchGames []model.WordSearchGame `json:"wordSearchGames"`
	PuzzleGames     []model.PuzzleGame     `json:"puzzleGames"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	u.Normalize()
	return User{
		ID:              string(u.ID),
		Name:            u.Name,
		Email:           u.Email,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		Achievements:    u.Achievements,
		MemoryGames:     u.MemoryGames,
		WordSearchGames: u.WordSearchGames,
		PuzzleGames:     u.PuzzleGames,
	}
}

// UsersFromModel converts a list of users
func UsersFromModel(users []*model.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, UserFromModel(u))
	}
	return out
}

// LoginResponse is the response for a successful login
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
}

// LoginResponseFromToken creates a LoginResponse from an issued token
func LoginResponseFromToken(t *auth.Token) LoginResponse {
	return LoginResponse{
		AccessToken: t.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   t.ExpiresAt,
		UserID:      string(t.UserID),
	}
}

// Health is the response for the health endpoint
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
