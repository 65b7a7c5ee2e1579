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

// PlatStore defines the database methods needed by plat handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type PlatStore interface {
	ListPlats(ctx context.Context) ([]database.Plat, error)
	GetPlat(ctx context.Context, id uuid.UUID) (database.Plat, error)
	CreatePlat(ctx context.Context, arg database.CreatePlatParams) (database.Plat, error)
	UpdatePlat(ctx context.Context, arg database.UpdatePlatParams) (database.Plat, error)
	DeletePlat(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	ListVersionsByPlat(ctx context.Context, platID uuid.UUID) ([]database.PlatVersion, error)
	CreateVersion(ctx context.Context, arg database.CreateVersionParams) (database.PlatVersion, error)
	UpdateVersion(ctx context.Context, arg database.UpdateVersionParams) (database.PlatVersion, error)
	DeleteVersion(ctx context.Context, arg database.DeleteVersionParams) (uuid.UUID, error)

	ListPlatIngredients(ctx context.Context, platID uuid.UUID) ([]database.PlatIngredientRow, error)
	LinkPlatIngredient(ctx context.Context, arg database.LinkPlatIngredientParams) error
	UnlinkPlatIngredient(ctx context.Context, arg database.UnlinkPlatIngredientParams) error

	ListTagsByPlat(ctx context.Context, platID uuid.UUID) ([]database.Tag, error)
	LinkPlatTag(ctx context.Context, arg database.LinkPlatTagParams) error
	UnlinkPlatTag(ctx context.Context, arg database.UnlinkPlatTagParams) error
}

// PlatHandler handles the dish catalog endpoints.
type PlatHandler struct {
	store PlatStore
}

// NewPlatHandler creates a new PlatHandler.
func NewPlatHandler(store PlatStore) *PlatHandler {
	return &PlatHandler{store: store}
}

// RegisterPublicRoutes registers the read-only catalog endpoints.
func (h *PlatHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/plats", h.List)
	r.Get("/plats/{id}", h.Get)
}

// RegisterAdminRoutes registers the back-office CRUD endpoints.
// Expected to be mounted inside an admin-gated subrouter.
func (h *PlatHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/plats", h.Create)
	r.Put("/plats/{id}", h.Update)
	r.Delete("/plats/{id}", h.Delete)

	r.Post("/plats/{id}/versions", h.CreateVersion)
	r.Put("/plats/{id}/versions/{vid}", h.UpdateVersion)
	r.Delete("/plats/{id}/versions/{vid}", h.DeleteVersion)

	r.Put("/plats/{id}/ingredients/{iid}", h.LinkIngredient)
	r.Delete("/plats/{id}/ingredients/{iid}", h.UnlinkIngredient)

	r.Put("/plats/{id}/tags/{tid}", h.LinkTag)
	r.Delete("/plats/{id}/tags/{tid}", h.UnlinkTag)
}

// --- Request / Response types ---

type platRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	BasePrice            string `json:"basePrice"`
	Available            *bool  `json:"available"`
	AvailableForDelivery *bool  `json:"availableForDelivery"`
	Speciality           bool   `json:"speciality"`
	IncludesSauce        bool   `json:"includesSauce"`
	SaucePrice           string `json:"saucePrice"`
	SortOrder            int32  `json:"sortOrder"`
	Image                string `json:"image"`
}

type versionRequest struct {
	Size       string `json:"size"`
	ExtraPrice string `json:"extraPrice"`
	Image      string `json:"image"`
}

type linkIngredientRequest struct {
	Removable *bool `json:"removable"`
}

type platResponse struct {
	ID                   uuid.UUID                `json:"id"`
	Name                 string                   `json:"name"`
	Description          *string                  `json:"description"`
	BasePrice            string                   `json:"basePrice"`
	Available            bool                     `json:"available"`
	AvailableForDelivery bool                     `json:"availableForDelivery"`
	Speciality           bool                     `json:"speciality"`
	IncludesSauce        bool                     `json:"includesSauce"`
	SaucePrice           string                   `json:"saucePrice"`
	SortOrder            int32                    `json:"sortOrder"`
	Image                *string                  `json:"image"`
	Versions             []versionResponse        `json:"versions"`
	Ingredients          []platIngredientResponse `json:"ingredients"`
	Tags                 []tagResponse            `json:"tags"`
}

type versionResponse struct {
	ID         uuid.UUID `json:"id"`
	PlatID     uuid.UUID `json:"platId"`
	Size       string    `json:"size"`
	ExtraPrice string    `json:"extraPrice"`
	Image      *string   `json:"image"`
}

type platIngredientResponse struct {
	IngredientID uuid.UUID `json:"ingredientId"`
	Name         string    `json:"name"`
	Allergen     bool      `json:"allergen"`
	Removable    bool      `json:"removable"`
}

func toVersionResponse(v database.PlatVersion) versionResponse {
	return versionResponse{
		ID:         v.ID,
		PlatID:     v.PlatID,
		Size:       v.Size,
		ExtraPrice: numericToString(v.ExtraPrice),
		Image:      textOrNil(v.Image),
	}
}

func (h *PlatHandler) toPlatResponse(ctx context.Context, p database.Plat) (platResponse, error) {
	resp := platResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          textOrNil(p.Description),
		BasePrice:            numericToString(p.BasePrice),
		Available:            p.Available,
		AvailableForDelivery: p.AvailableForDelivery,
		Speciality:           p.Speciality,
		IncludesSauce:        p.IncludesSauce,
		SaucePrice:           numericToString(p.SaucePrice),
		SortOrder:            p.SortOrder,
		Image:                textOrNil(p.Image),
		Versions:             []versionResponse{},
		Ingredients:          []platIngredientResponse{},
		Tags:                 []tagResponse{},
	}

	versions, err := h.store.ListVersionsByPlat(ctx, p.ID)
	if err != nil {
		return resp, err
	}
	for _, v := range versions {
		resp.Versions = append(resp.Versions, toVersionResponse(v))
	}

	ingredients, err := h.store.ListPlatIngredients(ctx, p.ID)
	if err != nil {
		return resp, err
	}
	for _, i := range ingredients {
		resp.Ingredients = append(resp.Ingredients, platIngredientResponse{
			IngredientID: i.IngredientID,
			Name:         i.Name,
			Allergen:     i.Allergen,
			Removable:    i.Removable,
		})
	}

	tags, err := h.store.ListTagsByPlat(ctx, p.ID)
	if err != nil {
		return resp, err
	}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, toTagResponse(t))
	}

	return resp, nil
}

// --- Handlers ---

// List returns the full dish catalog with versions, composition and tags.
func (h *PlatHandler) List(w http.ResponseWriter, r *http.Request) {
	plats, err := h.store.ListPlats(r.Context())
	if err != nil {
		log.Printf("ERROR: list plats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]platResponse, 0, len(plats))
	for _, p := range plats {
		pr, err := h.toPlatResponse(r.Context(), p)
		if err != nil {
			log.Printf("ERROR: build plat response: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, pr)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single plat by ID.
func (h *PlatHandler) Get(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}

	plat, err := h.store.GetPlat(r.Context(), platID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plat not found"})
			return
		}
		log.Printf("ERROR: get plat: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toPlatResponse(r.Context(), plat)
	if err != nil {
		log.Printf("ERROR: build plat response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func platParamsFromRequest(req platRequest) (database.CreatePlatParams, error) {
	basePrice, err := parsePrice(req.BasePrice)
	if err != nil {
		return database.CreatePlatParams{}, errors.New("invalid basePrice")
	}

	saucePriceStr := req.SaucePrice
	if saucePriceStr == "" {
		saucePriceStr = "0"
	}
	saucePrice, err := parsePrice(saucePriceStr)
	if err != nil {
		return database.CreatePlatParams{}, errors.New("invalid saucePrice")
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	availableForDelivery := true
	if req.AvailableForDelivery != nil {
		availableForDelivery = *req.AvailableForDelivery
	}

	return database.CreatePlatParams{
		Name:                 req.Name,
		Description:          textFromString(req.Description),
		BasePrice:            basePrice,
		Available:            available,
		AvailableForDelivery: availableForDelivery,
		Speciality:           req.Speciality,
		IncludesSauce:        req.IncludesSauce,
		SaucePrice:           saucePrice,
		SortOrder:            req.SortOrder,
		Image:                textFromString(req.Image),
	}, nil
}

// Create adds a new plat to the catalog.
func (h *PlatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req platRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	params, err := platParamsFromRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	plat, err := h.store.CreatePlat(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create plat: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toPlatResponse(r.Context(), plat)
	if err != nil {
		log.Printf("ERROR: build plat response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Update modifies an existing plat.
func (h *PlatHandler) Update(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}

	var req platRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	params, err := platParamsFromRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	plat, err := h.store.UpdatePlat(r.Context(), database.UpdatePlatParams{
		ID:                   platID,
		Name:                 params.Name,
		Description:          params.Description,
		BasePrice:            params.BasePrice,
		Available:            params.Available,
		AvailableForDelivery: params.AvailableForDelivery,
		Speciality:           params.Speciality,
		IncludesSauce:        params.IncludesSauce,
		SaucePrice:           params.SaucePrice,
		SortOrder:            params.SortOrder,
		Image:                params.Image,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plat not found"})
			return
		}
		log.Printf("ERROR: update plat: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toPlatResponse(r.Context(), plat)
	if err != nil {
		log.Printf("ERROR: build plat response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a plat. Historical order items keep their frozen copy.
func (h *PlatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}

	if _, err := h.store.DeletePlat(r.Context(), platID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plat not found"})
			return
		}
		log.Printf("ERROR: delete plat: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Version handlers ---

// CreateVersion adds a size version to a plat.
func (h *PlatHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}

	var req versionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Size == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "size is required"})
		return
	}

	priceStr := req.ExtraPrice
	if priceStr == "" {
		priceStr = "0"
	}
	extraPrice, err := parsePrice(priceStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid extraPrice"})
		return
	}

	v, err := h.store.CreateVersion(r.Context(), database.CreateVersionParams{
		PlatID:     platID,
		Size:       req.Size,
		ExtraPrice: extraPrice,
		Image:      textFromString(req.Image),
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plat not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "size already exists for this plat"})
			return
		}
		log.Printf("ERROR: create version: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toVersionResponse(v))
}

// UpdateVersion modifies an existing version.
func (h *PlatHandler) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}
	versionID, err := uuid.Parse(chi.URLParam(r, "vid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid version ID"})
		return
	}

	var req versionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Size == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "size is required"})
		return
	}

	priceStr := req.ExtraPrice
	if priceStr == "" {
		priceStr = "0"
	}
	extraPrice, err := parsePrice(priceStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid extraPrice"})
		return
	}

	v, err := h.store.UpdateVersion(r.Context(), database.UpdateVersionParams{
		ID:         versionID,
		PlatID:     platID,
		Size:       req.Size,
		ExtraPrice: extraPrice,
		Image:      textFromString(req.Image),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "version not found"})
			return
		}
		log.Printf("ERROR: update version: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toVersionResponse(v))
}

// DeleteVersion removes a version from a plat.
func (h *PlatHandler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}
	versionID, err := uuid.Parse(chi.URLParam(r, "vid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid version ID"})
		return
	}

	if _, err := h.store.DeleteVersion(r.Context(), database.DeleteVersionParams{ID: versionID, PlatID: platID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "version not found"})
			return
		}
		log.Printf("ERROR: delete version: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Composition handlers ---

// LinkIngredient attaches an ingredient to a plat's composition.
func (h *PlatHandler) LinkIngredient(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}
	ingredientID, err := uuid.Parse(chi.URLParam(r, "iid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ingredient ID"})
		return
	}

	var req linkIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Ingredients default to removable; fixed components are opt-in.
	removable := true
	if req.Removable != nil {
		removable = *req.Removable
	}

	if err := h.store.LinkPlatIngredient(r.Context(), database.LinkPlatIngredientParams{
		PlatID:       platID,
		IngredientID: ingredientID,
		Removable:    removable,
	}); err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plat or ingredient not found"})
			return
		}
		log.Printf("ERROR: link plat ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LinkTag attaches a tag to a plat.
func (h *PlatHandler) LinkTag(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	if err := h.store.LinkPlatTag(r.Context(), database.LinkPlatTagParams{PlatID: platID, TagID: tagID}); err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plat or tag not found"})
			return
		}
		log.Printf("ERROR: link plat tag: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnlinkTag removes a tag from a plat.
func (h *PlatHandler) UnlinkTag(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	if err := h.store.UnlinkPlatTag(r.Context(), database.UnlinkPlatTagParams{PlatID: platID, TagID: tagID}); err != nil {
		log.Printf("ERROR: unlink plat tag: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnlinkIngredient removes an ingredient from a plat's composition.
func (h *PlatHandler) UnlinkIngredient(w http.ResponseWriter, r *http.Request) {
	platID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plat ID"})
		return
	}
	ingredientID, err := uuid.Parse(chi.URLParam(r, "iid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ingredient ID"})
		return
	}

	if err := h.store.UnlinkPlatIngredient(r.Context(), database.UnlinkPlatIngredientParams{
		PlatID:       platID,
		IngredientID: ingredientID,
	}); err != nil {
		log.Printf("ERROR: unlink plat ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
