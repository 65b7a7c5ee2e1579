package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fritkot/api/internal/database"
	"github.com/fritkot/api/internal/enum"
)

// mockStatusStore implements StatusStore with configurable behavior.
type mockStatusStore struct {
	getOrderForUpdateFn        func(ctx context.Context, id uuid.UUID) (database.Order, error)
	updateOrderStatusFn        func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	createOrderStatusHistoryFn func(ctx context.Context, arg database.CreateOrderStatusHistoryParams) (database.OrderStatusHistory, error)
}

func (m *mockStatusStore) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.getOrderForUpdateFn(ctx, id)
}
func (m *mockStatusStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	return m.updateOrderStatusFn(ctx, arg)
}
func (m *mockStatusStore) CreateOrderStatusHistory(ctx context.Context, arg database.CreateOrderStatusHistoryParams) (database.OrderStatusHistory, error) {
	return m.createOrderStatusHistoryFn(ctx, arg)
}

func statusStoreFor(current, orderType string) *mockStatusStore {
	return &mockStatusStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return database.Order{ID: id, OrderType: orderType, Status: current}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			return database.Order{ID: arg.ID, OrderType: orderType, Status: arg.Status}, nil
		},
		createOrderStatusHistoryFn: func(ctx context.Context, arg database.CreateOrderStatusHistoryParams) (database.OrderStatusHistory, error) {
			return database.OrderStatusHistory{ID: uuid.New(), OrderID: arg.OrderID, Status: arg.Status}, nil
		},
	}
}

func newTestStatusService(store *mockStatusStore) (*StatusService, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) StatusStore { return store }
	return NewStatusService(pool, newStore), tx
}

// --- Pure state table tests ---

func TestValidateTransition_HappyPathDelivery(t *testing.T) {
	steps := []struct{ from, to string }{
		{enum.OrderStatusPending, enum.OrderStatusConfirmed},
		{enum.OrderStatusConfirmed, enum.OrderStatusPreparing},
		{enum.OrderStatusPreparing, enum.OrderStatusReady},
		{enum.OrderStatusReady, enum.OrderStatusOutForDelivery},
		{enum.OrderStatusOutForDelivery, enum.OrderStatusDelivered},
	}
	for _, s := range steps {
		if err := ValidateTransition(s.from, s.to, enum.OrderTypeDelivery); err != nil {
			t.Fatalf("%s -> %s should be legal for delivery: %v", s.from, s.to, err)
		}
	}
}

func TestValidateTransition_HappyPathTakeout(t *testing.T) {
	steps := []struct{ from, to string }{
		{enum.OrderStatusPending, enum.OrderStatusConfirmed},
		{enum.OrderStatusConfirmed, enum.OrderStatusPreparing},
		{enum.OrderStatusPreparing, enum.OrderStatusReady},
		{enum.OrderStatusReady, enum.OrderStatusCompleted},
	}
	for _, s := range steps {
		if err := ValidateTransition(s.from, s.to, enum.OrderTypeTakeout); err != nil {
			t.Fatalf("%s -> %s should be legal for takeout: %v", s.from, s.to, err)
		}
	}
}

func TestValidateTransition_TakeoutNeverOutForDelivery(t *testing.T) {
	err := ValidateTransition(enum.OrderStatusReady, enum.OrderStatusOutForDelivery, enum.OrderTypeTakeout)
	var transErr *TransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected TransitionError, got: %v", err)
	}
}

func TestValidateTransition_DeliveryNeverCompleted(t *testing.T) {
	err := ValidateTransition(enum.OrderStatusReady, enum.OrderStatusCompleted, enum.OrderTypeDelivery)
	var transErr *TransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected TransitionError, got: %v", err)
	}
}

func TestValidateTransition_NoSkipping(t *testing.T) {
	err := ValidateTransition(enum.OrderStatusPending, enum.OrderStatusReady, enum.OrderTypeTakeout)
	var transErr *TransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected TransitionError, got: %v", err)
	}
}

func TestValidateTransition_NoGoingBack(t *testing.T) {
	err := ValidateTransition(enum.OrderStatusPreparing, enum.OrderStatusConfirmed, enum.OrderTypeTakeout)
	var transErr *TransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected TransitionError, got: %v", err)
	}
}

func TestValidateTransition_TerminalStatesAreAbsorbing(t *testing.T) {
	for _, terminal := range []string{
		enum.OrderStatusDelivered,
		enum.OrderStatusCompleted,
		enum.OrderStatusCancelled,
	} {
		for next := range enum.StatusOrdinal {
			if err := ValidateTransition(terminal, next, enum.OrderTypeDelivery); err == nil {
				t.Fatalf("%s -> %s should be illegal", terminal, next)
			}
		}
	}
}

func TestValidateTransition_CancellableFromEveryActiveState(t *testing.T) {
	for _, from := range []string{
		enum.OrderStatusPending,
		enum.OrderStatusConfirmed,
		enum.OrderStatusPreparing,
		enum.OrderStatusReady,
		enum.OrderStatusOutForDelivery,
	} {
		if err := ValidateTransition(from, enum.OrderStatusCancelled, enum.OrderTypeDelivery); err != nil {
			t.Fatalf("%s -> CANCELLED should be legal: %v", from, err)
		}
	}
}

func TestAllowedNext_FiltersByOrderType(t *testing.T) {
	next := AllowedNext(enum.OrderStatusReady, enum.OrderTypeTakeout)
	for _, s := range next {
		if s == enum.OrderStatusOutForDelivery {
			t.Fatal("takeout order offered OUT_FOR_DELIVERY")
		}
	}

	next = AllowedNext(enum.OrderStatusReady, enum.OrderTypeDelivery)
	for _, s := range next {
		if s == enum.OrderStatusCompleted {
			t.Fatal("delivery order offered COMPLETED")
		}
	}
}

// --- Service tests ---

func TestTransition_Success(t *testing.T) {
	store := statusStoreFor(enum.OrderStatusPending, enum.OrderTypeTakeout)
	svc, tx := newTestStatusService(store)

	result, err := svc.Transition(context.Background(), uuid.New(), enum.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order.Status != enum.OrderStatusConfirmed {
		t.Fatalf("order status: got %s", result.Order.Status)
	}
	if result.History.Status != enum.OrderStatusConfirmed {
		t.Fatalf("history status: got %s", result.History.Status)
	}
	if !tx.committed {
		t.Fatal("transaction was not committed")
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	store := statusStoreFor(enum.OrderStatusPending, enum.OrderTypeTakeout)
	svc, _ := newTestStatusService(store)

	_, err := svc.Transition(context.Background(), uuid.New(), "SHIPPED")
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got: %v", err)
	}
}

func TestTransition_IllegalTransitionRollsBack(t *testing.T) {
	store := statusStoreFor(enum.OrderStatusDelivered, enum.OrderTypeDelivery)
	updated := false
	store.updateOrderStatusFn = func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
		updated = true
		return database.Order{}, nil
	}
	svc, tx := newTestStatusService(store)

	_, err := svc.Transition(context.Background(), uuid.New(), enum.OrderStatusPending)
	var transErr *TransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected TransitionError, got: %v", err)
	}
	if updated {
		t.Fatal("status was updated despite illegal transition")
	}
	if tx.committed {
		t.Fatal("transaction committed despite illegal transition")
	}
}

func TestTransition_OrderNotFound(t *testing.T) {
	store := statusStoreFor(enum.OrderStatusPending, enum.OrderTypeTakeout)
	store.getOrderForUpdateFn = func(ctx context.Context, id uuid.UUID) (database.Order, error) {
		return database.Order{}, pgx.ErrNoRows
	}
	svc, _ := newTestStatusService(store)

	_, err := svc.Transition(context.Background(), uuid.New(), enum.OrderStatusConfirmed)
	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected ReferenceError, got: %v", err)
	}
	if refErr.Entity != "order" {
		t.Fatalf("wrong entity: %+v", refErr)
	}
}
