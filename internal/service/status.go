package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fritkot/api/internal/database"
	"github.com/fritkot/api/internal/enum"
)

var ErrUnknownStatus = errors.New("unknown status")

// TransitionError reports a status change that is not a legal successor of
// the order's current state.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("cannot transition from %s", e.From)
	}
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// allowedTransitions is the authoritative state table, enforced on every
// transition request regardless of which controls the UI renders. Delivered,
// Completed and Cancelled are absorbing: they have no entry.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:        {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
	enum.OrderStatusConfirmed:      {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing:      {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:          {enum.OrderStatusOutForDelivery, enum.OrderStatusCompleted, enum.OrderStatusCancelled},
	enum.OrderStatusOutForDelivery: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	_, ok := enum.StatusOrdinal[s]
	return ok
}

// AllowedNext returns the legal successors of current for the given order
// type: takeout orders complete at the counter and never go out for delivery,
// delivery orders end at Delivered.
func AllowedNext(current, orderType string) []string {
	base, ok := allowedTransitions[current]
	if !ok {
		return nil
	}
	next := make([]string, 0, len(base))
	for _, s := range base {
		if s == enum.OrderStatusOutForDelivery && orderType != enum.OrderTypeDelivery {
			continue
		}
		if s == enum.OrderStatusCompleted && orderType != enum.OrderTypeTakeout {
			continue
		}
		next = append(next, s)
	}
	return next
}

// ValidateTransition checks the state table for one transition.
func ValidateTransition(current, next, orderType string) error {
	for _, s := range AllowedNext(current, orderType) {
		if s == next {
			return nil
		}
	}
	if _, ok := allowedTransitions[current]; !ok {
		return &TransitionError{From: current}
	}
	return &TransitionError{From: current, To: next}
}

// StatusStore defines the DB methods needed to transition order status.
type StatusStore interface {
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CreateOrderStatusHistory(ctx context.Context, arg database.CreateOrderStatusHistoryParams) (database.OrderStatusHistory, error)
}

// NewStatusStore creates a StatusStore from a DBTX (pool or tx).
type NewStatusStore func(db database.DBTX) StatusStore

// StatusService drives the order lifecycle state machine.
type StatusService struct {
	pool     TxBeginner
	newStore NewStatusStore
}

// NewStatusService creates a new StatusService.
func NewStatusService(pool TxBeginner, newStore NewStatusStore) *StatusService {
	return &StatusService{pool: pool, newStore: newStore}
}

// TransitionResult is the updated order plus the history row appended for it.
type TransitionResult struct {
	Order   database.Order
	History database.OrderStatusHistory
}

// Transition applies one status change. The order row is locked for the
// duration of the transaction, so two concurrent staff actions on the same
// order serialize and the history log stays consistent; transitions on
// different orders proceed in parallel.
func (s *StatusService) Transition(ctx context.Context, orderID uuid.UUID, next string) (*TransitionResult, error) {
	if !IsValidStatus(next) {
		return nil, ErrUnknownStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ReferenceError{Entity: "order", ID: orderID.String()}
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := ValidateTransition(order.Status, next, order.OrderType); err != nil {
		return nil, err
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: next,
	})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	history, err := store.CreateOrderStatusHistory(ctx, database.CreateOrderStatusHistoryParams{
		OrderID: orderID,
		Status:  next,
	})
	if err != nil {
		return nil, fmt.Errorf("create status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &TransitionResult{Order: updated, History: history}, nil
}
