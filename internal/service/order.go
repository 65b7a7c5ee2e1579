package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/fritkot/api/internal/database"
	"github.com/fritkot/api/internal/enum"
	"github.com/fritkot/api/internal/pricing"
)

// Errors returned by the order service. The first three messages are part of
// the API contract with the SPA and must not be reworded.
var (
	ErrEmptyItems              = errors.New("Items are required")
	ErrInvalidQuantity         = errors.New("Each item must have a valid positive quantity")
	ErrItemReference           = errors.New("Item must have either platId or sauceId")
	ErrInvalidOrderType        = errors.New("invalid order type")
	ErrDeliveryAddressRequired = errors.New("delivery address is required for delivery orders")
	ErrPickupDisabled          = errors.New("online pickup is currently disabled")
	ErrDeliveryDisabled        = errors.New("online delivery is currently disabled")
	ErrInvalidPlatID           = errors.New("invalid platId")
	ErrInvalidVersionID        = errors.New("invalid versionId")
	ErrInvalidSauceID          = errors.New("invalid sauceId")
	ErrInvalidExtraID          = errors.New("invalid extraId")
	ErrInvalidIngredientID     = errors.New("invalid ingredientId")
	ErrVersionRequired         = errors.New("a version must be selected for this plat")
	ErrVersionMismatch         = errors.New("version does not belong to plat")
	ErrIngredientNotRemovable  = errors.New("ingredient cannot be removed from this plat")
	ErrSauceLineFields         = errors.New("sauce items cannot carry a version, extras or removed ingredients")
)

// ReferenceError reports a selection id that failed to resolve against the
// live catalog, or resolved to a row whose availability flags forbid it.
// The offending entity and id are named so the client can highlight the line.
type ReferenceError struct {
	Entity string
	ID     string
	Reason string // "not found" when empty
}

func (e *ReferenceError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "not found"
	}
	return fmt.Sprintf("%s %s %s", e.Entity, e.ID, reason)
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	ListSettings(ctx context.Context) ([]database.Setting, error)
	GetPlat(ctx context.Context, id uuid.UUID) (database.Plat, error)
	CountVersionsByPlat(ctx context.Context, platID uuid.UUID) (int64, error)
	GetVersion(ctx context.Context, id uuid.UUID) (database.PlatVersion, error)
	GetSauce(ctx context.Context, id uuid.UUID) (database.Sauce, error)
	GetExtra(ctx context.Context, id uuid.UUID) (database.Extra, error)
	GetPlatIngredient(ctx context.Context, arg database.GetPlatIngredientParams) (database.PlatIngredientRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderItemExtra(ctx context.Context, arg database.CreateOrderItemExtraParams) (database.OrderItemExtra, error)
	CreateOrderItemRemovedIngredient(ctx context.Context, arg database.CreateOrderItemRemovedIngredientParams) (database.OrderItemRemovedIngredient, error)
	CreateOrderStatusHistory(ctx context.Context, arg database.CreateOrderStatusHistoryParams) (database.OrderStatusHistory, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// StoreConfig carries the ordering-channel settings resolved at submission
// time. It is always passed explicitly, never read from ambient state.
type StoreConfig struct {
	SpecialitiesEnabled   bool
	OnlinePickupEnabled   bool
	OnlineDeliveryEnabled bool
}

// CreateOrderRequest is the input for submitting an order. It deliberately
// has no price fields anywhere: the server recomputes everything.
type CreateOrderRequest struct {
	UserID          uuid.UUID
	OrderType       string
	DeliveryAddress string
	Message         string
	Items           []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single cart line as submitted: bare ids plus a
// quantity and free-text message. On a dish line SauceID selects the sauce
// for the plat's sauce slot; on a sauce line it is the standalone sauce.
type CreateOrderItemRequest struct {
	PlatID               string
	VersionID            string
	SauceID              string
	ExtraIDs             []string
	RemovedIngredientIDs []string
	Quantity             int32
	Message              string
}

// CreateOrderResult is the created order with its frozen items.
type CreateOrderResult struct {
	Order   database.Order
	History database.OrderStatusHistory
	Items   []OrderItemResult
}

// OrderItemResult is a frozen item with its frozen extras and removals.
type OrderItemResult struct {
	Item               database.OrderItem
	Extras             []database.OrderItemExtra
	RemovedIngredients []database.OrderItemRemovedIngredient
}

// OrderService handles order submission.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// lineKind discriminates the two selection shapes explicitly instead of
// inferring them repeatedly from which optional fields happen to be set.
type lineKind int

const (
	dishLine lineKind = iota
	sauceLine
)

func classifyLine(item CreateOrderItemRequest) (lineKind, error) {
	hasPlat := item.PlatID != ""
	hasSauce := item.SauceID != ""
	switch {
	case hasPlat:
		return dishLine, nil
	case hasSauce:
		if item.VersionID != "" || len(item.ExtraIDs) > 0 || len(item.RemovedIngredientIDs) > 0 {
			return sauceLine, ErrSauceLineFields
		}
		return sauceLine, nil
	default:
		return dishLine, ErrItemReference
	}
}

// frozenExtra holds a resolved extra to freeze onto the order item.
type frozenExtra struct {
	extraID uuid.UUID
	name    string
	price   decimal.Decimal
}

// frozenRemoval holds a resolved removed-ingredient reference.
type frozenRemoval struct {
	ingredientID uuid.UUID
	name         string
}

// processedItem is a fully validated, repriced line ready to insert.
type processedItem struct {
	params   database.CreateOrderItemParams
	extras   []frozenExtra
	removals []frozenRemoval
}

// CreateOrder validates every reference against the live catalog, recomputes
// all prices server-side and persists the order atomically. Any invalid line
// fails the whole submission; nothing is persisted on error.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.OrderType != enum.OrderTypeTakeout && req.OrderType != enum.OrderTypeDelivery {
		return nil, ErrInvalidOrderType
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	delivery := req.OrderType == enum.OrderTypeDelivery
	if delivery && req.DeliveryAddress == "" {
		return nil, ErrDeliveryAddressRequired
	}

	// --- Begin transaction: resolution, repricing and persistence are one
	// atomic unit; a rejected submission leaves nothing behind. ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	cfg, err := loadStoreConfig(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if delivery && !cfg.OnlineDeliveryEnabled {
		return nil, ErrDeliveryDisabled
	}
	if !delivery && !cfg.OnlinePickupEnabled {
		return nil, ErrPickupDisabled
	}

	// --- Process items: validate references + recompute prices ---
	var (
		lines []pricing.Line
		items []processedItem
	)
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		kind, err := classifyLine(item)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}

		var (
			line pricing.Line
			pi   processedItem
		)
		switch kind {
		case dishLine:
			line, pi, err = s.processDishLine(ctx, store, cfg, delivery, item)
		case sauceLine:
			line, pi, err = s.processSauceLine(ctx, store, item)
		}
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}

		line.Quantity = item.Quantity
		pi.params.Quantity = item.Quantity
		pi.params.UnitPrice = decimalToNumeric(line.UnitPrice())
		pi.params.TotalPrice = decimalToNumeric(line.Total())
		if item.Message != "" {
			pi.params.Message = pgtype.Text{String: item.Message, Valid: true}
		}

		lines = append(lines, line)
		items = append(items, pi)
	}

	// --- Totals: subtotal plus delivery fee policy ---
	totalPrice := pricing.OrderTotal(lines, delivery)

	deliveryAddress := pgtype.Text{}
	if delivery {
		deliveryAddress = pgtype.Text{String: req.DeliveryAddress, Valid: true}
	}
	message := pgtype.Text{}
	if req.Message != "" {
		message = pgtype.Text{String: req.Message, Valid: true}
	}

	// --- Insert order + items, freezing names and prices ---
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:          req.UserID,
		OrderType:       req.OrderType,
		Status:          enum.OrderStatusPending,
		TotalPrice:      decimalToNumeric(totalPrice),
		DeliveryAddress: deliveryAddress,
		Message:         message,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var itemResults []OrderItemResult
	for _, pi := range items {
		pi.params.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, pi.params)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}

		var extraResults []database.OrderItemExtra
		for _, fe := range pi.extras {
			oie, err := store.CreateOrderItemExtra(ctx, database.CreateOrderItemExtraParams{
				OrderItemID: item.ID,
				ExtraID:     pgtype.UUID{Bytes: fe.extraID, Valid: true},
				Name:        fe.name,
				Price:       decimalToNumeric(fe.price),
			})
			if err != nil {
				return nil, fmt.Errorf("create order item extra: %w", err)
			}
			extraResults = append(extraResults, oie)
		}

		var removalResults []database.OrderItemRemovedIngredient
		for _, fr := range pi.removals {
			ri, err := store.CreateOrderItemRemovedIngredient(ctx, database.CreateOrderItemRemovedIngredientParams{
				OrderItemID:  item.ID,
				IngredientID: pgtype.UUID{Bytes: fr.ingredientID, Valid: true},
				Name:         fr.name,
			})
			if err != nil {
				return nil, fmt.Errorf("create order item removed ingredient: %w", err)
			}
			removalResults = append(removalResults, ri)
		}

		itemResults = append(itemResults, OrderItemResult{
			Item:               item,
			Extras:             extraResults,
			RemovedIngredients: removalResults,
		})
	}

	// --- Initial status history entry, same transaction ---
	history, err := store.CreateOrderStatusHistory(ctx, database.CreateOrderStatusHistoryParams{
		OrderID: order.ID,
		Status:  enum.OrderStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, History: history, Items: itemResults}, nil
}

// processDishLine resolves and validates a plat line: the plat itself, its
// version, the sauce chosen for its sauce slot, extras and removed
// ingredients. Returns the pricing line and the frozen insert params.
func (s *OrderService) processDishLine(ctx context.Context, store OrderStore, cfg StoreConfig, delivery bool, item CreateOrderItemRequest) (pricing.Line, processedItem, error) {
	var (
		line pricing.Line
		pi   processedItem
	)

	platID, err := uuid.Parse(item.PlatID)
	if err != nil {
		return line, pi, ErrInvalidPlatID
	}
	plat, err := store.GetPlat(ctx, platID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return line, pi, &ReferenceError{Entity: "plat", ID: item.PlatID}
		}
		return line, pi, fmt.Errorf("get plat: %w", err)
	}
	if !plat.Available {
		return line, pi, &ReferenceError{Entity: "plat", ID: item.PlatID, Reason: "is not available"}
	}
	if delivery && !plat.AvailableForDelivery {
		return line, pi, &ReferenceError{Entity: "plat", ID: item.PlatID, Reason: "is not available for delivery"}
	}
	if plat.Speciality && !cfg.SpecialitiesEnabled {
		return line, pi, &ReferenceError{Entity: "plat", ID: item.PlatID, Reason: "is not available"}
	}

	line.Base = numericToDecimal(plat.BasePrice)
	pi.params.PlatID = pgtype.UUID{Bytes: platID, Valid: true}
	pi.params.Name = plat.Name

	// A plat with versions defined is only orderable with a version chosen.
	versionCount, err := store.CountVersionsByPlat(ctx, platID)
	if err != nil {
		return line, pi, fmt.Errorf("count versions: %w", err)
	}
	if versionCount > 0 && item.VersionID == "" {
		return line, pi, ErrVersionRequired
	}
	if item.VersionID != "" {
		versionID, err := uuid.Parse(item.VersionID)
		if err != nil {
			return line, pi, ErrInvalidVersionID
		}
		version, err := store.GetVersion(ctx, versionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return line, pi, &ReferenceError{Entity: "version", ID: item.VersionID}
			}
			return line, pi, fmt.Errorf("get version: %w", err)
		}
		if version.PlatID != platID {
			return line, pi, ErrVersionMismatch
		}
		line.VersionExtra = numericToDecimal(version.ExtraPrice)
		pi.params.VersionID = pgtype.UUID{Bytes: versionID, Valid: true}
		pi.params.VersionSize = pgtype.Text{String: version.Size, Valid: true}
	}

	// Sauce chosen for the plat's sauce slot. The reference is validated and
	// frozen either way; it only prices when the plat includes a sauce slot.
	if item.SauceID != "" {
		sauceID, err := uuid.Parse(item.SauceID)
		if err != nil {
			return line, pi, ErrInvalidSauceID
		}
		sauce, err := store.GetSauce(ctx, sauceID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return line, pi, &ReferenceError{Entity: "sauce", ID: item.SauceID}
			}
			return line, pi, fmt.Errorf("get sauce: %w", err)
		}
		if !sauce.Available {
			return line, pi, &ReferenceError{Entity: "sauce", ID: item.SauceID, Reason: "is not available"}
		}
		pi.params.DishSauceID = pgtype.UUID{Bytes: sauceID, Valid: true}
		pi.params.DishSauceName = pgtype.Text{String: sauce.Name, Valid: true}
		if plat.IncludesSauce {
			line.SaucePrice = numericToDecimal(plat.SaucePrice)
			pi.params.DishSaucePrice = decimalToNumeric(line.SaucePrice)
		}
	}

	for _, rawID := range item.ExtraIDs {
		extraID, err := uuid.Parse(rawID)
		if err != nil {
			return line, pi, ErrInvalidExtraID
		}
		extra, err := store.GetExtra(ctx, extraID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return line, pi, &ReferenceError{Entity: "extra", ID: rawID}
			}
			return line, pi, fmt.Errorf("get extra: %w", err)
		}
		if !extra.Available {
			return line, pi, &ReferenceError{Entity: "extra", ID: rawID, Reason: "is not available"}
		}
		if delivery && !extra.AvailableForDelivery {
			return line, pi, &ReferenceError{Entity: "extra", ID: rawID, Reason: "is not available for delivery"}
		}
		if extra.Speciality && !cfg.SpecialitiesEnabled {
			return line, pi, &ReferenceError{Entity: "extra", ID: rawID, Reason: "is not available"}
		}
		price := numericToDecimal(extra.Price)
		line.Extras = append(line.Extras, price)
		pi.extras = append(pi.extras, frozenExtra{extraID: extraID, name: extra.Name, price: price})
	}

	// Removed ingredients never price; they are validated against the plat's
	// composition and frozen by reference only.
	for _, rawID := range item.RemovedIngredientIDs {
		ingredientID, err := uuid.Parse(rawID)
		if err != nil {
			return line, pi, ErrInvalidIngredientID
		}
		row, err := store.GetPlatIngredient(ctx, database.GetPlatIngredientParams{
			PlatID:       platID,
			IngredientID: ingredientID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return line, pi, &ReferenceError{Entity: "ingredient", ID: rawID}
			}
			return line, pi, fmt.Errorf("get plat ingredient: %w", err)
		}
		if !row.Removable {
			return line, pi, ErrIngredientNotRemovable
		}
		pi.removals = append(pi.removals, frozenRemoval{ingredientID: ingredientID, name: row.Name})
	}

	return line, pi, nil
}

// processSauceLine resolves a standalone sauce line.
func (s *OrderService) processSauceLine(ctx context.Context, store OrderStore, item CreateOrderItemRequest) (pricing.Line, processedItem, error) {
	var (
		line pricing.Line
		pi   processedItem
	)

	sauceID, err := uuid.Parse(item.SauceID)
	if err != nil {
		return line, pi, ErrInvalidSauceID
	}
	sauce, err := store.GetSauce(ctx, sauceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return line, pi, &ReferenceError{Entity: "sauce", ID: item.SauceID}
		}
		return line, pi, fmt.Errorf("get sauce: %w", err)
	}
	if !sauce.Available {
		return line, pi, &ReferenceError{Entity: "sauce", ID: item.SauceID, Reason: "is not available"}
	}

	line.Base = numericToDecimal(sauce.Price)
	pi.params.SauceID = pgtype.UUID{Bytes: sauceID, Valid: true}
	pi.params.Name = sauce.Name
	return line, pi, nil
}

func loadStoreConfig(ctx context.Context, store OrderStore) (StoreConfig, error) {
	settings, err := store.ListSettings(ctx)
	if err != nil {
		return StoreConfig{}, err
	}
	// Absent keys leave the channel enabled; only an explicit "false" disables.
	cfg := StoreConfig{
		SpecialitiesEnabled:   true,
		OnlinePickupEnabled:   true,
		OnlineDeliveryEnabled: true,
	}
	for _, s := range settings {
		enabled := s.Value != "false"
		switch s.Key {
		case enum.SettingEnableSpecialities:
			cfg.SpecialitiesEnabled = enabled
		case enum.SettingEnableOnlinePickup:
			cfg.OnlinePickupEnabled = enabled
		case enum.SettingEnableOnlineDelivery:
			cfg.OnlineDeliveryEnabled = enabled
		}
	}
	return cfg, nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
