package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fritkot/api/internal/database"
)

// TagStore defines the database methods needed by tag handlers.
type TagStore interface {
	ListTags(ctx context.Context) ([]database.Tag, error)
	ListSearchableTags(ctx context.Context) ([]database.Tag, error)
	CreateTag(ctx context.Context, arg database.CreateTagParams) (database.Tag, error)
	UpdateTag(ctx context.Context, arg database.UpdateTagParams) (database.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// TagHandler handles the tag endpoints.
type TagHandler struct {
	store TagStore
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(store TagStore) *TagHandler {
	return &TagHandler{store: store}
}

// RegisterPublicRoutes registers the read-only tag endpoints.
func (h *TagHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/tags", h.List)
	r.Get("/tags/searchable", h.ListSearchable)
}

// RegisterAdminRoutes registers the back-office CRUD endpoints.
func (h *TagHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/tags", h.Create)
	r.Put("/tags/{id}", h.Update)
	r.Delete("/tags/{id}", h.Delete)
}

type tagRequest struct {
	Name       string `json:"name"`
	Searchable bool   `json:"searchable"`
	SortOrder  int32  `json:"sortOrder"`
}

type tagResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Searchable bool      `json:"searchable"`
	SortOrder  int32     `json:"sortOrder"`
}

func toTagResponse(t database.Tag) tagResponse {
	return tagResponse{
		ID:         t.ID,
		Name:       t.Name,
		Searchable: t.Searchable,
		SortOrder:  t.SortOrder,
	}
}

// List returns all tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		log.Printf("ERROR: list tags: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, toTagResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListSearchable returns tags exposed as front-of-site filters.
func (h *TagHandler) ListSearchable(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListSearchableTags(r.Context())
	if err != nil {
		log.Printf("ERROR: list searchable tags: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, toTagResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new tag.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	tag, err := h.store.CreateTag(r.Context(), database.CreateTagParams{
		Name:       req.Name,
		Searchable: req.Searchable,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "tag already exists"})
			return
		}
		log.Printf("ERROR: create tag: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toTagResponse(tag))
}

// Update modifies an existing tag.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	tagID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	tag, err := h.store.UpdateTag(r.Context(), database.UpdateTagParams{
		ID:         tagID,
		Name:       req.Name,
		Searchable: req.Searchable,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tag not found"})
			return
		}
		log.Printf("ERROR: update tag: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

// Delete removes a tag.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tagID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	if _, err := h.store.DeleteTag(r.Context(), tagID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tag not found"})
			return
		}
		log.Printf("ERROR: delete tag: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
