package handler

import (
	"log/slog"
	"net/http"

	"github.com/ymatsui/memoboard/internal/identity"
	"github.com/ymatsui/memoboard/internal/service"
)

// PostHandler manages CRUD for blog posts.
//
// Reads are public (list and get return any post to any caller, with the
// owner's public fields embedded). Mutations run behind RequireAuth and the
// service layer's ownership policy.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleList returns all posts with owners, newest first.
//
// HTTP: GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGetByID returns a single post with its owner.
//
// HTTP: GET /api/posts/{id}
func (h *PostHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleCreate makes a new post owned by the caller.
//
// HTTP: POST /api/posts  (auth required)
// BODY: {"title": "...", "content": "..."}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, errUnauthenticated())
		return
	}

	var input service.PostInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), ident.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleUpdate modifies a post. Owner only.
//
// HTTP: PUT /api/posts/{id}  (auth required)
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, errUnauthenticated())
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input service.PostInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Update(r.Context(), ident.ID, id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes a post. Owner only.
//
// HTTP: DELETE /api/posts/{id}  (auth required)
// RESPONSE: {"message": "...", "deleted": <post>}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, errUnauthenticated())
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	deleted, err := h.posts.Delete(r.Context(), ident.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Post deleted successfully",
		"deleted": deleted,
	})
}
