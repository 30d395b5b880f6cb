package books

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/personal-library/internal/httpx"
	"github.com/ayush/personal-library/internal/models"
	"github.com/ayush/personal-library/internal/requestctx"
)

// Handler holds book HTTP handlers. All routes sit behind the auth gate.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CoversEnabled reports whether cover routes should be mounted.
func (h *Handler) CoversEnabled() bool {
	return h.svc.CoversEnabled()
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := requestctx.UserID(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Not authorized")
	}
	return id, ok
}

// List handles GET /api/books.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	books, err := h.svc.List(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

// Get handles GET /api/books/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	book, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, book)
}

// Create handles POST /api/books.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var in models.BookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	book, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	h.logger.InfoContext(r.Context(), "book created",
		slog.String("user_id", userID), slog.String("book_id", book.ID))
	httpx.WriteJSON(w, http.StatusCreated, book)
}

// Update handles PUT /api/books/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var in models.BookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	book, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	h.logger.InfoContext(r.Context(), "book removed",
		slog.String("user_id", userID), slog.String("book_id", id))
	httpx.WriteMessage(w, http.StatusOK, "Book removed")
}

// PutCover handles PUT /api/books/{id}/cover with a raw image body.
func (h *Handler) PutCover(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	// read one byte past the cap so oversize bodies are detectable
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxCoverBytes+1))
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	book, err := h.svc.PutCover(r.Context(), userID, chi.URLParam(r, "id"), data, r.Header.Get("Content-Type"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, book)
}

// GetCover streams the cover image of a book.
func (h *Handler) GetCover(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	rc, contentType, size, err := h.svc.Cover(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "cover stream interrupted", slog.Any("error", err))
	}
}
