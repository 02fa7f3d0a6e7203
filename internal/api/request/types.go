package request

import "strings"

// CreateUserRequest is the request body for registering a user
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Normalize trims surrounding whitespace from name and email
func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

// UpdateUserRequest is the request body for replacing a user's profile
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Normalize trims surrounding whitespace from name and email
func (r *UpdateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims surrounding whitespace from the email
func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// TimedGameRequest is the request body for memory and word-search submissions.
// Pointers distinguish an omitted field from zero. The error count is sent as
// "erros", the name existing clients use.
type TimedGameRequest struct {
	Time   *float64 `json:"time" validate:"required,min=0"`
	Errors *int     `json:"erros" validate:"required,min=0"`
}

// PuzzleGameRequest is the request body for puzzle submissions
type PuzzleGameRequest struct {
	Turns *int `json:"turns" validate:"required,min=0"`
}
