package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ymatsui/memoboard/internal/apperror"
	"github.com/ymatsui/memoboard/internal/identity"
	"github.com/ymatsui/memoboard/internal/model"
	"github.com/ymatsui/memoboard/internal/service"
)

// MemoHandler manages CRUD for memos.
//
// WIRE FORMAT:
// items/images/urls travel as JSON-encoded text in request and response
// bodies — the clients of the system this replaces stringify before sending
// and parse after receiving, and that contract is preserved. This handler
// is the wire-side encoding boundary: memoRequest/memoResponse hold the
// string form, the service only ever sees structured values.
type MemoHandler struct {
	memos  *service.MemoService
	logger *slog.Logger
}

// NewMemoHandler creates a MemoHandler.
func NewMemoHandler(memos *service.MemoService, logger *slog.Logger) *MemoHandler {
	return &MemoHandler{memos: memos, logger: logger}
}

// memoRequest is the create/update body. The three list fields are
// stringified JSON arrays; absent or null decodes as "".
type memoRequest struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Items       string `json:"items"`
	TextContent string `json:"textContent"`
	Images      string `json:"images"`
	URLs        string `json:"urls"`
}

// toInput decodes the stringified fields into the structured service
// input. Unparseable field content is a 400, not a 500 — it's the client's
// payload that's broken.
func (req *memoRequest) toInput() (service.MemoInput, error) {
	input := service.MemoInput{
		Title:       req.Title,
		Type:        req.Type,
		TextContent: req.TextContent,
	}

	var err error
	if input.Items, err = model.DecodeItems(req.Items); err != nil {
		return input, apperror.ValidationFailed("items", "items must be a JSON-encoded array")
	}
	if input.Images, err = model.DecodeImages(req.Images); err != nil {
		return input, apperror.ValidationFailed("images", "images must be a JSON-encoded array")
	}
	if input.URLs, err = model.DecodeLinks(req.URLs); err != nil {
		return input, apperror.ValidationFailed("urls", "urls must be a JSON-encoded array")
	}

	return input, nil
}

// memoResponse is the wire shape of a memo, stringified fields included.
type memoResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Items       string    `json:"items"`
	TextContent string    `json:"textContent"`
	Images      string    `json:"images"`
	URLs        string    `json:"urls"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newMemoResponse(m *model.Memo) (memoResponse, error) {
	items, err := model.EncodeItems(m.Items)
	if err != nil {
		return memoResponse{}, err
	}
	images, err := model.EncodeImages(m.Images)
	if err != nil {
		return memoResponse{}, err
	}
	urls, err := model.EncodeLinks(m.URLs)
	if err != nil {
		return memoResponse{}, err
	}

	return memoResponse{
		ID:          m.ID,
		Title:       m.Title,
		Type:        m.Type,
		Items:       items,
		TextContent: m.TextContent,
		Images:      images,
		URLs:        urls,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// HandleList returns all memos, newest first.
//
// HTTP: GET /api/memos
func (h *MemoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	memos, err := h.memos.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]memoResponse, 0, len(memos))
	for i := range memos {
		resp, err := newMemoResponse(&memos[i])
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetByID returns a single memo to its owner.
//
// HTTP: GET /api/memos/{id}  (auth required, owner only)
func (h *MemoHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
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

	memo, err := h.memos.GetByID(r.Context(), ident.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := newMemoResponse(memo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreate makes a new memo owned by the caller.
//
// HTTP: POST /api/memos  (auth required)
// BODY: {"title": "...", "type": "checklist"|"text", "items"?, "textContent"?, "images"?, "urls"?}
func (h *MemoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, errUnauthenticated())
		return
	}

	var req memoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	memo, err := h.memos.Create(r.Context(), ident.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := newMemoResponse(memo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleUpdate modifies a memo. Owner only.
//
// HTTP: PUT /api/memos/{id}  (auth required)
func (h *MemoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req memoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	memo, err := h.memos.Update(r.Context(), ident.ID, id, input)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := newMemoResponse(memo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete removes a memo. Owner only.
//
// HTTP: DELETE /api/memos/{id}  (auth required)
// RESPONSE: {"message": "...", "deleted": <memo>}
func (h *MemoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	deleted, err := h.memos.Delete(r.Context(), ident.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := newMemoResponse(deleted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Memo deleted successfully",
		"deleted": resp,
	})
}
