package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fritkot/api/internal/database"
)

// SettingStore defines the database methods needed by settings handlers.
type SettingStore interface {
	ListSettings(ctx context.Context) ([]database.Setting, error)
	UpsertSetting(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error)
}

// SettingHandler exposes store-level feature flags such as
// enableOnlinePickup and enableOnlineDelivery.
type SettingHandler struct {
	store SettingStore
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(store SettingStore) *SettingHandler {
	return &SettingHandler{store: store}
}

// RegisterPublicRoutes registers the read-only settings endpoint.
func (h *SettingHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/settings", h.List)
}

// RegisterAdminRoutes registers the write endpoint.
func (h *SettingHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/settings/{key}", h.Upsert)
}

type settingRequest struct {
	Value string `json:"value"`
}

// List returns all settings as a flat key/value object.
func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.ListSettings(r.Context())
	if err != nil {
		log.Printf("ERROR: list settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make(map[string]string, len(settings))
	for _, s := range settings {
		resp[s.Key] = s.Value
	}
	writeJSON(w, http.StatusOK, resp)
}

// Upsert sets a setting value, creating the key if needed.
func (h *SettingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key is required"})
		return
	}

	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	setting, err := h.store.UpsertSetting(r.Context(), database.UpsertSettingParams{
		Key:   key,
		Value: req.Value,
	})
	if err != nil {
		log.Printf("ERROR: upsert setting: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{setting.Key: setting.Value})
}
