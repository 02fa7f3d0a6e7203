package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/edugames/internal/api/apierr"
	"github.com/mcoot/edugames/internal/api/middleware"
	"github.com/mcoot/edugames/internal/api/request"
	"github.com/mcoot/edugames/internal/api/response"
	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/services/auth"
	"github.com/mcoot/edugames/internal/services/users"
)

// UserHandler handles account and login endpoints
type UserHandler struct {
	users  *users.Service
	auth   *auth.Service
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *users.Service, auth *auth.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		auth:   auth,
		logger: logger,
	}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.users.ListAll(r.Context())
	if err != nil {
		apierr.WriteError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UsersFromModel(all))
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), userIDVar(r))
	if err != nil {
		apierr.WriteError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.MustGetClaims(r.Context())

	user, err := h.users.GetByID(r.Context(), claims.UserID())
	if err != nil {
		apierr.WriteError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := request.Decode(w, r, &req); err != nil {
		apierr.WriteError(w, h.logger, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	user, err := h.users.Create(r.Context(), users.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apierr.WriteError(w, h.logger, err)
		return
	}

	response.Created(w, "/api/v1/users/"+string(user.ID), response.UserFromModel(user))
}

// Update handles PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateUserRequest
	if err := request.Decode(w, r, &req); err != nil {
		apierr.WriteError(w, h.logger, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	user, err := h.users.Update(r.Context(), userIDVar(r), users.Profile{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apierr.WriteError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), userIDVar(r)); err != nil {
		apierr.WriteError(w, h.logger, err)
		return
	}
	response.NoContent(w)
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		apierr.WriteError(w, h.logger, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apierr.WriteError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LoginResponseFromToken(token))
}

func userIDVar(r *http.Request) model.UserID {
	return model.UserID(mux.Vars(r)["id"])
}
