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

// IngredientStore defines the database methods needed by ingredient handlers.
type IngredientStore interface {
	ListIngredients(ctx context.Context) ([]database.Ingredient, error)
	CreateIngredient(ctx context.Context, arg database.CreateIngredientParams) (database.Ingredient, error)
	UpdateIngredient(ctx context.Context, arg database.UpdateIngredientParams) (database.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// IngredientHandler handles the ingredient catalog endpoints.
type IngredientHandler struct {
	store IngredientStore
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(store IngredientStore) *IngredientHandler {
	return &IngredientHandler{store: store}
}

// RegisterPublicRoutes registers the read-only ingredient endpoints.
func (h *IngredientHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/ingredients", h.List)
}

// RegisterAdminRoutes registers the back-office CRUD endpoints.
func (h *IngredientHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/ingredients", h.Create)
	r.Put("/ingredients/{id}", h.Update)
	r.Delete("/ingredients/{id}", h.Delete)
}

type ingredientRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Allergen    bool   `json:"allergen"`
	Image       string `json:"image"`
}

type ingredientResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Allergen    bool      `json:"allergen"`
	Image       *string   `json:"image"`
}

func toIngredientResponse(i database.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: textOrNil(i.Description),
		Allergen:    i.Allergen,
		Image:       textOrNil(i.Image),
	}
}

// List returns all ingredients.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.store.ListIngredients(r.Context())
	if err != nil {
		log.Printf("ERROR: list ingredients: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]ingredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		resp = append(resp, toIngredientResponse(i))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new ingredient.
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	ingredient, err := h.store.CreateIngredient(r.Context(), database.CreateIngredientParams{
		Name:        req.Name,
		Description: textFromString(req.Description),
		Allergen:    req.Allergen,
		Image:       textFromString(req.Image),
	})
	if err != nil {
		log.Printf("ERROR: create ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toIngredientResponse(ingredient))
}

// Update modifies an existing ingredient.
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	ingredientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ingredient ID"})
		return
	}

	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	ingredient, err := h.store.UpdateIngredient(r.Context(), database.UpdateIngredientParams{
		ID:          ingredientID,
		Name:        req.Name,
		Description: textFromString(req.Description),
		Allergen:    req.Allergen,
		Image:       textFromString(req.Image),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		log.Printf("ERROR: update ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toIngredientResponse(ingredient))
}

// Delete removes an ingredient. Plats referencing it lose the link.
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ingredientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ingredient ID"})
		return
	}

	if _, err := h.store.DeleteIngredient(r.Context(), ingredientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		log.Printf("ERROR: delete ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
