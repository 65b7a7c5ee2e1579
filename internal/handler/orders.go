package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fritkot/api/internal/database"
	"github.com/fritkot/api/internal/enum"
	"github.com/fritkot/api/internal/middleware"
	"github.com/fritkot/api/internal/service"
	"github.com/fritkot/api/internal/ws"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// OrderCreator submits a validated, repriced order atomically.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// StatusTransitioner applies one order status transition.
type StatusTransitioner interface {
	Transition(ctx context.Context, orderID uuid.UUID, next string) (*service.TransitionResult, error)
}

// OrderReadStore defines the read-side database methods for order views.
type OrderReadStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrdersByUser(ctx context.Context, arg database.ListOrdersByUserParams) ([]database.Order, error)
	CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemExtras(ctx context.Context, orderItemID uuid.UUID) ([]database.OrderItemExtra, error)
	ListOrderItemRemovedIngredients(ctx context.Context, orderItemID uuid.UUID) ([]database.OrderItemRemovedIngredient, error)
	ListOrderStatusHistory(ctx context.Context, orderID uuid.UUID) ([]database.OrderStatusHistory, error)
}

// OrderHandler handles order submission, history and the staff board.
type OrderHandler struct {
	orders OrderCreator
	status StatusTransitioner
	store  OrderReadStore
	hub    *ws.Hub
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderCreator, status StatusTransitioner, store OrderReadStore, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{orders: orders, status: status, store: store, hub: hub}
}

// RegisterCustomerRoutes registers the authenticated customer endpoints.
func (h *OrderHandler) RegisterCustomerRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/users/orders", h.ListMine)
}

// RegisterStaffRoutes registers the cashier/kiosk board endpoints.
func (h *OrderHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType string `json:"type"`
	// Older clients sent the order type as "orderType".
	OrderTypeLegacy string                   `json:"orderType"`
	DeliveryAddress string                   `json:"deliveryAddress"`
	Message         string                   `json:"message"`
	Items           []createOrderItemRequest `json:"items"`
}

// orderType prefers the documented "type" field, falling back to the
// legacy "orderType" spelling.
func (r createOrderRequest) orderType() string {
	if r.OrderType != "" {
		return r.OrderType
	}
	return r.OrderTypeLegacy
}

type createOrderItemRequest struct {
	PlatID               string      `json:"platId"`
	VersionID            string      `json:"versionId"`
	SauceID              string      `json:"sauceId"`
	ExtraIDs             []string    `json:"extraIds"`
	RemovedIngredientIDs []string    `json:"removedIngredientIds"`
	Quantity             json.Number `json:"quantity"`
	Message              string      `json:"message"`
}

// quantity parses the item quantity. Non-integer or out-of-range values
// collapse to zero so the validator rejects them with the quantity
// contract message instead of a generic decode error.
func (it createOrderItemRequest) quantity() int32 {
	n, err := it.Quantity.Int64()
	if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
		return 0
	}
	return int32(n)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID              uuid.UUID              `json:"id"`
	OrderType       string                 `json:"orderType"`
	Status          string                 `json:"status"`
	StatusText      string                 `json:"statusText"`
	TotalPrice      string                 `json:"totalPrice"`
	DeliveryAddress *string                `json:"deliveryAddress"`
	Message         *string                `json:"message"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
	Items           []orderItemResponse    `json:"items"`
	StatusHistory   []statusChangeResponse `json:"statusHistory"`
}

type orderItemResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	PlatID             *uuid.UUID                  `json:"platId"`
	SauceID            *uuid.UUID                  `json:"sauceId"`
	Name               string                      `json:"name"`
	VersionID          *uuid.UUID                  `json:"versionId"`
	VersionSize        *string                     `json:"versionSize"`
	Sauce              *orderItemSauceResponse     `json:"sauce"`
	Quantity           int32                       `json:"quantity"`
	UnitPrice          string                      `json:"unitPrice"`
	TotalPrice         string                      `json:"totalPrice"`
	Message            *string                     `json:"message"`
	AddedExtras        []orderItemExtraResponse    `json:"addedExtras"`
	RemovedIngredients []removedIngredientResponse `json:"removedIngredients"`
}

// orderItemSauceResponse is the sauce frozen into a dish's sauce slot.
type orderItemSauceResponse struct {
	ID    *uuid.UUID `json:"id"`
	Name  string     `json:"name"`
	Price string     `json:"price"`
}

type orderItemExtraResponse struct {
	ExtraID *uuid.UUID `json:"extraId"`
	Name    string     `json:"name"`
	Price   string     `json:"price"`
}

type removedIngredientResponse struct {
	IngredientID *uuid.UUID `json:"ingredientId"`
	Name         string     `json:"name"`
}

type statusChangeResponse struct {
	Status     string    `json:"status"`
	StatusText string    `json:"statusText"`
	CreatedAt  time.Time `json:"createdAt"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Page   int32           `json:"page"`
	Limit  int32           `json:"limit"`
}

func uuidOrNil(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

func toOrderItemResponse(it database.OrderItem, extras []database.OrderItemExtra, removed []database.OrderItemRemovedIngredient) orderItemResponse {
	resp := orderItemResponse{
		ID:                 it.ID,
		PlatID:             uuidOrNil(it.PlatID),
		SauceID:            uuidOrNil(it.SauceID),
		Name:               it.Name,
		VersionID:          uuidOrNil(it.VersionID),
		VersionSize:        textOrNil(it.VersionSize),
		Quantity:           it.Quantity,
		UnitPrice:          numericToString(it.UnitPrice),
		TotalPrice:         numericToString(it.TotalPrice),
		Message:            textOrNil(it.Message),
		AddedExtras:        []orderItemExtraResponse{},
		RemovedIngredients: []removedIngredientResponse{},
	}

	if it.DishSauceName.Valid {
		resp.Sauce = &orderItemSauceResponse{
			ID:    uuidOrNil(it.DishSauceID),
			Name:  it.DishSauceName.String,
			Price: numericToString(it.DishSaucePrice),
		}
	}

	for _, e := range extras {
		resp.AddedExtras = append(resp.AddedExtras, orderItemExtraResponse{
			ExtraID: uuidOrNil(e.ExtraID),
			Name:    e.Name,
			Price:   numericToString(e.Price),
		})
	}
	for _, ri := range removed {
		resp.RemovedIngredients = append(resp.RemovedIngredients, removedIngredientResponse{
			IngredientID: uuidOrNil(ri.IngredientID),
			Name:         ri.Name,
		})
	}

	return resp
}

// buildOrderResponse assembles the full order view: frozen items with their
// extras and removals, plus the status trail.
func (h *OrderHandler) buildOrderResponse(ctx context.Context, o database.Order) (orderResponse, error) {
	resp := orderResponse{
		ID:              o.ID,
		OrderType:       o.OrderType,
		Status:          o.Status,
		StatusText:      enum.StatusText[o.Status],
		TotalPrice:      numericToString(o.TotalPrice),
		DeliveryAddress: textOrNil(o.DeliveryAddress),
		Message:         textOrNil(o.Message),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           []orderItemResponse{},
		StatusHistory:   []statusChangeResponse{},
	}

	items, err := h.store.ListOrderItemsByOrder(ctx, o.ID)
	if err != nil {
		return resp, err
	}
	for _, it := range items {
		extras, err := h.store.ListOrderItemExtras(ctx, it.ID)
		if err != nil {
			return resp, err
		}
		removed, err := h.store.ListOrderItemRemovedIngredients(ctx, it.ID)
		if err != nil {
			return resp, err
		}
		resp.Items = append(resp.Items, toOrderItemResponse(it, extras, removed))
	}

	history, err := h.store.ListOrderStatusHistory(ctx, o.ID)
	if err != nil {
		return resp, err
	}
	for _, hrow := range history {
		resp.StatusHistory = append(resp.StatusHistory, statusChangeResponse{
			Status:     hrow.Status,
			StatusText: enum.StatusText[hrow.Status],
			CreatedAt:  hrow.CreatedAt,
		})
	}

	return resp, nil
}

// isValidationError reports whether err is a client fault in the submitted
// cart rather than a server failure.
func isValidationError(err error) bool {
	var refErr *service.ReferenceError
	if errors.As(err, &refErr) {
		return true
	}
	for _, sentinel := range []error{
		service.ErrEmptyItems,
		service.ErrInvalidQuantity,
		service.ErrItemReference,
		service.ErrInvalidOrderType,
		service.ErrDeliveryAddressRequired,
		service.ErrPickupDisabled,
		service.ErrDeliveryDisabled,
		service.ErrInvalidPlatID,
		service.ErrInvalidVersionID,
		service.ErrInvalidSauceID,
		service.ErrInvalidExtraID,
		service.ErrInvalidIngredientID,
		service.ErrVersionRequired,
		service.ErrVersionMismatch,
		service.ErrIngredientNotRemovable,
		service.ErrSauceLineFields,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// --- Handlers ---

// Create submits an order. All prices are recomputed server-side; the
// request carries bare catalog ids only.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := make([]service.CreateOrderItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CreateOrderItemRequest{
			PlatID:               it.PlatID,
			VersionID:            it.VersionID,
			SauceID:              it.SauceID,
			ExtraIDs:             it.ExtraIDs,
			RemovedIngredientIDs: it.RemovedIngredientIDs,
			Quantity:             it.quantity(),
			Message:              it.Message,
		})
	}

	result, err := h.orders.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:          claims.UserID,
		OrderType:       req.orderType(),
		DeliveryAddress: req.DeliveryAddress,
		Message:         req.Message,
		Items:           items,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.buildOrderResponse(r.Context(), result.Order)
	if err != nil {
		log.Printf("ERROR: build order response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastJSON(ws.EventOrderCreated, resp)
	}

	writeJSON(w, http.StatusCreated, resp)
}

func parsePagination(r *http.Request) (page, limit int32) {
	page, limit = 1, defaultPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = int32(n)
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = int32(n)
			if limit > maxPageSize {
				limit = maxPageSize
			}
		}
	}
	return page, limit
}

// ListMine returns the authenticated customer's order history, newest first.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	page, limit := parsePagination(r)

	total, err := h.store.CountOrdersByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: count orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orders, err := h.store.ListOrdersByUser(r.Context(), database.ListOrdersByUserParams{
		UserID: claims.UserID,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := orderListResponse{
		Orders: []orderResponse{},
		Total:  total,
		Page:   page,
		Limit:  limit,
	}
	for _, o := range orders {
		or, err := h.buildOrderResponse(r.Context(), o)
		if err != nil {
			log.Printf("ERROR: build order response: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp.Orders = append(resp.Orders, or)
	}

	writeJSON(w, http.StatusOK, resp)
}

// List returns the staff board, optionally filtered by status.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	status := pgtype.Text{}
	if v := r.URL.Query().Get("status"); v != "" {
		if !service.IsValidStatus(v) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
			return
		}
		status = pgtype.Text{String: v, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		or, err := h.buildOrderResponse(r.Context(), o)
		if err != nil {
			log.Printf("ERROR: build order response: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, or)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single order with its items and history.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.buildOrderResponse(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: build order response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus applies one lifecycle transition to an order. Illegal
// transitions are rejected against the state table, whatever the client UI
// claimed to allow.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.status.Transition(r.Context(), orderID, req.Status)
	if err != nil {
		var transErr *service.TransitionError
		var refErr *service.ReferenceError
		switch {
		case errors.Is(err, service.ErrUnknownStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.As(err, &transErr):
			writeJSON(w, http.StatusConflict, map[string]string{"error": transErr.Error()})
		case errors.As(err, &refErr):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		default:
			log.Printf("ERROR: transition order status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp, err := h.buildOrderResponse(r.Context(), result.Order)
	if err != nil {
		log.Printf("ERROR: build order response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastJSON(ws.EventOrderStatusChanged, resp)
	}

	writeJSON(w, http.StatusOK, resp)
}
