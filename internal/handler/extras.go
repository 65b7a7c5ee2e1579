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

// ExtraStore defines the database methods needed by extra handlers.
type ExtraStore interface {
	ListExtras(ctx context.Context) ([]database.Extra, error)
	GetExtra(ctx context.Context, id uuid.UUID) (database.Extra, error)
	CreateExtra(ctx context.Context, arg database.CreateExtraParams) (database.Extra, error)
	UpdateExtra(ctx context.Context, arg database.UpdateExtraParams) (database.Extra, error)
	DeleteExtra(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListTagsByExtra(ctx context.Context, extraID uuid.UUID) ([]database.Tag, error)
	LinkExtraTag(ctx context.Context, arg database.LinkExtraTagParams) error
	UnlinkExtraTag(ctx context.Context, arg database.UnlinkExtraTagParams) error
}

// ExtraHandler handles the supplement (extra) catalog endpoints.
type ExtraHandler struct {
	store ExtraStore
}

// NewExtraHandler creates a new ExtraHandler.
func NewExtraHandler(store ExtraStore) *ExtraHandler {
	return &ExtraHandler{store: store}
}

// RegisterPublicRoutes registers the read-only extra endpoints.
// Mounted under /api for historical client compatibility.
func (h *ExtraHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/api/extras", h.List)
}

// RegisterAdminRoutes registers the back-office CRUD endpoints.
func (h *ExtraHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/extras", h.Create)
	r.Put("/extras/{id}", h.Update)
	r.Delete("/extras/{id}", h.Delete)
	r.Put("/extras/{id}/tags/{tid}", h.LinkTag)
	r.Delete("/extras/{id}/tags/{tid}", h.UnlinkTag)
}

type extraRequest struct {
	Name                 string `json:"name"`
	Price                string `json:"price"`
	Description          string `json:"description"`
	Available            *bool  `json:"available"`
	AvailableForDelivery *bool  `json:"availableForDelivery"`
	Speciality           bool   `json:"speciality"`
}

type extraResponse struct {
	ID                   uuid.UUID     `json:"id"`
	Name                 string        `json:"name"`
	Price                string        `json:"price"`
	Description          *string       `json:"description"`
	Available            bool          `json:"available"`
	AvailableForDelivery bool          `json:"availableForDelivery"`
	Speciality           bool          `json:"speciality"`
	Tags                 []tagResponse `json:"tags"`
}

// toExtraResponse resolves the extra's tag group memberships into the
// response the client uses to offer extras per dish tag.
func (h *ExtraHandler) toExtraResponse(ctx context.Context, e database.Extra) (extraResponse, error) {
	tags, err := h.store.ListTagsByExtra(ctx, e.ID)
	if err != nil {
		return extraResponse{}, err
	}
	tagResps := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		tagResps = append(tagResps, toTagResponse(t))
	}
	return extraResponse{
		ID:                   e.ID,
		Name:                 e.Name,
		Price:                numericToString(e.Price),
		Description:          textOrNil(e.Description),
		Available:            e.Available,
		AvailableForDelivery: e.AvailableForDelivery,
		Speciality:           e.Speciality,
		Tags:                 tagResps,
	}, nil
}

// List returns all extras with their tags.
func (h *ExtraHandler) List(w http.ResponseWriter, r *http.Request) {
	extras, err := h.store.ListExtras(r.Context())
	if err != nil {
		log.Printf("ERROR: list extras: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]extraResponse, 0, len(extras))
	for _, e := range extras {
		er, err := h.toExtraResponse(r.Context(), e)
		if err != nil {
			log.Printf("ERROR: list extra tags: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, er)
	}
	writeJSON(w, http.StatusOK, resp)
}

func extraParamsFromRequest(req extraRequest) (database.CreateExtraParams, error) {
	priceStr := req.Price
	if priceStr == "" {
		priceStr = "0"
	}
	price, err := parsePrice(priceStr)
	if err != nil {
		return database.CreateExtraParams{}, errors.New("invalid price")
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	availableForDelivery := true
	if req.AvailableForDelivery != nil {
		availableForDelivery = *req.AvailableForDelivery
	}

	return database.CreateExtraParams{
		Name:                 req.Name,
		Price:                price,
		Description:          textFromString(req.Description),
		Available:            available,
		AvailableForDelivery: availableForDelivery,
		Speciality:           req.Speciality,
	}, nil
}

// Create adds a new extra.
func (h *ExtraHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req extraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	params, err := extraParamsFromRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	extra, err := h.store.CreateExtra(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create extra: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toExtraResponse(r.Context(), extra)
	if err != nil {
		log.Printf("ERROR: list extra tags: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Update modifies an existing extra.
func (h *ExtraHandler) Update(w http.ResponseWriter, r *http.Request) {
	extraID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid extra ID"})
		return
	}

	var req extraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	params, err := extraParamsFromRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	extra, err := h.store.UpdateExtra(r.Context(), database.UpdateExtraParams{
		ID:                   extraID,
		Name:                 params.Name,
		Price:                params.Price,
		Description:          params.Description,
		Available:            params.Available,
		AvailableForDelivery: params.AvailableForDelivery,
		Speciality:           params.Speciality,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "extra not found"})
			return
		}
		log.Printf("ERROR: update extra: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toExtraResponse(r.Context(), extra)
	if err != nil {
		log.Printf("ERROR: list extra tags: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// LinkTag attaches a tag to an extra.
func (h *ExtraHandler) LinkTag(w http.ResponseWriter, r *http.Request) {
	extraID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid extra ID"})
		return
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	if err := h.store.LinkExtraTag(r.Context(), database.LinkExtraTagParams{ExtraID: extraID, TagID: tagID}); err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "extra or tag not found"})
			return
		}
		log.Printf("ERROR: link extra tag: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnlinkTag removes a tag from an extra.
func (h *ExtraHandler) UnlinkTag(w http.ResponseWriter, r *http.Request) {
	extraID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid extra ID"})
		return
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	if err := h.store.UnlinkExtraTag(r.Context(), database.UnlinkExtraTagParams{ExtraID: extraID, TagID: tagID}); err != nil {
		log.Printf("ERROR: unlink extra tag: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes an extra.
func (h *ExtraHandler) Delete(w http.ResponseWriter, r *http.Request) {
	extraID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid extra ID"})
		return
	}

	if _, err := h.store.DeleteExtra(r.Context(), extraID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "extra not found"})
			return
		}
		log.Printf("ERROR: delete extra: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
