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

// SauceStore defines the database methods needed by sauce handlers.
type SauceStore interface {
	ListSauces(ctx context.Context) ([]database.Sauce, error)
	GetSauce(ctx context.Context, id uuid.UUID) (database.Sauce, error)
	CreateSauce(ctx context.Context, arg database.CreateSauceParams) (database.Sauce, error)
	UpdateSauce(ctx context.Context, arg database.UpdateSauceParams) (database.Sauce, error)
	DeleteSauce(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// SauceHandler handles the sauce catalog endpoints.
type SauceHandler struct {
	store SauceStore
}

// NewSauceHandler creates a new SauceHandler.
func NewSauceHandler(store SauceStore) *SauceHandler {
	return &SauceHandler{store: store}
}

// RegisterPublicRoutes registers the read-only sauce endpoints.
func (h *SauceHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/sauces", h.List)
}

// RegisterAdminRoutes registers the back-office CRUD endpoints.
func (h *SauceHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/sauces", h.Create)
	r.Put("/sauces/{id}", h.Update)
	r.Delete("/sauces/{id}", h.Delete)
}

type sauceRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	Image       string `json:"image"`
}

type sauceResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description *string   `json:"description"`
	Available   bool      `json:"available"`
	Image       *string   `json:"image"`
}

func toSauceResponse(s database.Sauce) sauceResponse {
	return sauceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Price:       numericToString(s.Price),
		Description: textOrNil(s.Description),
		Available:   s.Available,
		Image:       textOrNil(s.Image),
	}
}

// List returns all sauces.
func (h *SauceHandler) List(w http.ResponseWriter, r *http.Request) {
	sauces, err := h.store.ListSauces(r.Context())
	if err != nil {
		log.Printf("ERROR: list sauces: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]sauceResponse, 0, len(sauces))
	for _, s := range sauces {
		resp = append(resp, toSauceResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new sauce.
func (h *SauceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sauceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	priceStr := req.Price
	if priceStr == "" {
		priceStr = "0"
	}
	price, err := parsePrice(priceStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	sauce, err := h.store.CreateSauce(r.Context(), database.CreateSauceParams{
		Name:        req.Name,
		Price:       price,
		Description: textFromString(req.Description),
		Available:   available,
		Image:       textFromString(req.Image),
	})
	if err != nil {
		log.Printf("ERROR: create sauce: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toSauceResponse(sauce))
}

// Update modifies an existing sauce.
func (h *SauceHandler) Update(w http.ResponseWriter, r *http.Request) {
	sauceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sauce ID"})
		return
	}

	var req sauceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	priceStr := req.Price
	if priceStr == "" {
		priceStr = "0"
	}
	price, err := parsePrice(priceStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	sauce, err := h.store.UpdateSauce(r.Context(), database.UpdateSauceParams{
		ID:          sauceID,
		Name:        req.Name,
		Price:       price,
		Description: textFromString(req.Description),
		Available:   available,
		Image:       textFromString(req.Image),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "sauce not found"})
			return
		}
		log.Printf("ERROR: update sauce: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSauceResponse(sauce))
}

// Delete removes a sauce.
func (h *SauceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sauceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sauce ID"})
		return
	}

	if _, err := h.store.DeleteSauce(r.Context(), sauceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "sauce not found"})
			return
		}
		log.Printf("ERROR: delete sauce: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
