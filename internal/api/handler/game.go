package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/edugames/internal/api/apierr"
	"github.com/mcoot/edugames/internal/api/request"
	"github.com/mcoot/edugames/internal/api/response"
	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/services/records"
)

// GameHandler handles game record endpoints for every kind
type GameHandler struct {
	records *records.Service
	logger  *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(records *records.Service, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		records: records,
		logger:  logger,
	}
}

// Submit returns the handler for POST /api/v1/users/{id}/{kind}-games.
// Responds with the updated user.
func (h *GameHandler) Submit(kind model.GameKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDVar(r)

		var (
			user *model.User
			err  error
		)
		switch kind {
		case model.GameKindMemory, model.GameKindWordSearch:
			var req request.TimedGameRequest
			if err := request.Decode(w, r, &req); err != nil {
				apierr.WriteError(w, h.logger, apierr.NewInvalidRequestError(err.Error()))
				return
			}
			score := model.TimedScore{Time: *req.Time, Errors: *req.Errors}
			if kind == model.GameKindMemory {
				user, err = h.records.SubmitMemoryGame(r.Context(), userID, score)
			} else {
				user, err = h.records.SubmitWordSearchGame(r.Context(), userID, score)
			}
		case model.GameKindPuzzle:
			var req request.PuzzleGameRequest
			if err := request.Decode(w, r, &req); err != nil {
				apierr.WriteError(w, h.logger, apierr.NewInvalidRequestError(err.Error()))
				return
			}
			user, err = h.records.SubmitPuzzleGame(r.Context(), userID, model.PuzzleScore{Turns: *req.Turns})
		default:
			err = model.ErrUnknownGameKind
		}
		if err != nil {
			apierr.WriteError(w, h.logger, err)
			return
		}

		response.Created(w, gameLocation(user, kind), response.UserFromModel(user))
	}
}

// List returns the handler for GET /api/v1/users/{id}/{kind}-games
func (h *GameHandler) List(kind model.GameKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDVar(r)

		var (
			games any
			err   error
		)
		switch kind {
		case model.GameKindMemory:
			games, err = h.records.ListMemoryGames(r.Context(), userID)
		case model.GameKindWordSearch:
			games, err = h.records.ListWordSearchGames(r.Context(), userID)
		case model.GameKindPuzzle:
			games, err = h.records.ListPuzzleGames(r.Context(), userID)
		default:
			err = model.ErrUnknownGameKind
		}
		if err != nil {
			apierr.WriteError(w, h.logger, err)
			return
		}
		response.JSON(w, http.StatusOK, games)
	}
}

// Get returns the handler for GET /api/v1/users/{id}/{kind}-games/{gameId}
func (h *GameHandler) Get(kind model.GameKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDVar(r)
		gameID := model.GameID(mux.Vars(r)["gameId"])

		var (
			game any
			err  error
		)
		switch kind {
		case model.GameKindMemory:
			game, err = h.records.GetMemoryGame(r.Context(), userID, gameID)
		case model.GameKindWordSearch:
			game, err = h.records.GetWordSearchGame(r.Context(), userID, gameID)
		case model.GameKindPuzzle:
			game, err = h.records.GetPuzzleGame(r.Context(), userID, gameID)
		default:
			err = model.ErrUnknownGameKind
		}
		if err != nil {
			apierr.WriteError(w, h.logger, err)
			return
		}
		response.JSON(w, http.StatusOK, game)
	}
}

// gameLocation points at the attempt just appended for kind
func gameLocation(user *model.User, kind model.GameKind) string {
	var id model.GameID
	switch kind {
	case model.GameKindMemory:
		if n := len(user.MemoryGames); n > 0 {
			id = user.MemoryGames[n-1].ID
		}
	case model.GameKindWordSearch:
		if n := len(user.WordSearchGames); n > 0 {
			id = user.WordSearchGames[n-1].ID
		}
	case model.GameKindPuzzle:
		if n := len(user.PuzzleGames); n > 0 {
			id = user.PuzzleGames[n-1].ID
		}
	}
	if id == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/users/%s/%s-games/%s", user.ID, kind, id)
}
