package handler

import (
	"log/slog"
	"net/http"

	"github.com/ymatsui/memoboard/internal/service"
)

// UserHandler manages CRUD for user accounts. None of these routes require
// authentication in the existing product contract — POST is the explicit
// find-or-create used by clients that register identities themselves, and
// DELETE is the admin removal path.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns all users.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGetByID returns a single user.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleCreate finds or creates a user for an external identity.
//
// HTTP: POST /api/users
// BODY: {"name"?: "...", "email": "...", "externalId": "..."}
//
// Calling this twice with the same externalId returns the same record both
// times — no duplicate row.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleUpdate modifies a user's name and email.
//
// HTTP: PUT /api/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input service.UpdateUserInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes a user and returns the deleted record.
//
// HTTP: DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
