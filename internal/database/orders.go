package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, order_type, status, total_price, delivery_address, message, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderType, &o.Status, &o.TotalPrice,
		&o.DeliveryAddress, &o.Message, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

type CreateOrderParams struct {
	UserID          uuid.UUID
	OrderType       string
	Status          string
	TotalPrice      pgtype.Numeric
	DeliveryAddress pgtype.Text
	Message         pgtype.Text
}

const createOrder = `INSERT INTO orders (user_id, order_type, status, total_price, delivery_address, message)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.UserID, arg.OrderType, arg.Status, arg.TotalPrice, arg.DeliveryAddress, arg.Message))
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

// GetOrderForUpdate locks the order row for the duration of the surrounding
// transaction so concurrent status transitions on one order serialize.
const getOrderForUpdate = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

const updateOrderStatus = `UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status))
}

type ListOrdersByUserParams struct {
	UserID uuid.UUID
	Limit  int32
	Offset int32
}

const listOrdersByUser = `SELECT ` + orderColumns + ` FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

func (q *Queries) ListOrdersByUser(ctx context.Context, arg ListOrdersByUserParams) ([]Order, error) {
	return q.queryOrders(ctx, listOrdersByUser, arg.UserID, arg.Limit, arg.Offset)
}

const countOrdersByUser = `SELECT count(*) FROM orders WHERE user_id = $1`

func (q *Queries) CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countOrdersByUser, userID).Scan(&n)
	return n, err
}

type ListOrdersParams struct {
	Status pgtype.Text
	Limit  int32
	Offset int32
}

// ListOrders feeds the cashier/kiosk board; optional status filter.
const listOrders = `SELECT ` + orderColumns + ` FROM orders
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	return q.queryOrders(ctx, listOrders, arg.Status, arg.Limit, arg.Offset)
}

func (q *Queries) queryOrders(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// ── Order items ──

const orderItemColumns = `id, order_id, plat_id, sauce_id, name, version_id, version_size,
	dish_sauce_id, dish_sauce_name, dish_sauce_price, quantity, unit_price, total_price, message`

func scanOrderItem(row interface{ Scan(dest ...any) error }) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(
		&it.ID, &it.OrderID, &it.PlatID, &it.SauceID, &it.Name,
		&it.VersionID, &it.VersionSize, &it.DishSauceID, &it.DishSauceName,
		&it.DishSaucePrice, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Message,
	)
	return it, err
}

type CreateOrderItemParams struct {
	OrderID        uuid.UUID
	PlatID         pgtype.UUID
	SauceID        pgtype.UUID
	Name           string
	VersionID      pgtype.UUID
	VersionSize    pgtype.Text
	DishSauceID    pgtype.UUID
	DishSauceName  pgtype.Text
	DishSaucePrice pgtype.Numeric
	Quantity       int32
	UnitPrice      pgtype.Numeric
	TotalPrice     pgtype.Numeric
	Message        pgtype.Text
}

const createOrderItem = `INSERT INTO order_items (order_id, plat_id, sauce_id, name, version_id, version_size,
	dish_sauce_id, dish_sauce_name, dish_sauce_price, quantity, unit_price, total_price, message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + orderItemColumns

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.PlatID, arg.SauceID, arg.Name, arg.VersionID, arg.VersionSize,
		arg.DishSauceID, arg.DishSauceName, arg.DishSaucePrice, arg.Quantity,
		arg.UnitPrice, arg.TotalPrice, arg.Message,
	))
}

const listOrderItemsByOrder = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY seq`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ── Frozen extras / removed ingredients ──

type CreateOrderItemExtraParams struct {
	OrderItemID uuid.UUID
	ExtraID     pgtype.UUID
	Name        string
	Price       pgtype.Numeric
}

const createOrderItemExtra = `INSERT INTO order_item_extras (order_item_id, extra_id, name, price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_item_id, extra_id, name, price`

func (q *Queries) CreateOrderItemExtra(ctx context.Context, arg CreateOrderItemExtraParams) (OrderItemExtra, error) {
	var e OrderItemExtra
	err := q.db.QueryRow(ctx, createOrderItemExtra, arg.OrderItemID, arg.ExtraID, arg.Name, arg.Price).
		Scan(&e.ID, &e.OrderItemID, &e.ExtraID, &e.Name, &e.Price)
	return e, err
}

const listOrderItemExtras = `SELECT id, order_item_id, extra_id, name, price
FROM order_item_extras WHERE order_item_id = $1 ORDER BY name`

func (q *Queries) ListOrderItemExtras(ctx context.Context, orderItemID uuid.UUID) ([]OrderItemExtra, error) {
	rows, err := q.db.Query(ctx, listOrderItemExtras, orderItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItemExtra
	for rows.Next() {
		var e OrderItemExtra
		if err := rows.Scan(&e.ID, &e.OrderItemID, &e.ExtraID, &e.Name, &e.Price); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

type CreateOrderItemRemovedIngredientParams struct {
	OrderItemID  uuid.UUID
	IngredientID pgtype.UUID
	Name         string
}

const createOrderItemRemovedIngredient = `INSERT INTO order_item_removed_ingredients (order_item_id, ingredient_id, name)
VALUES ($1, $2, $3)
RETURNING id, order_item_id, ingredient_id, name`

func (q *Queries) CreateOrderItemRemovedIngredient(ctx context.Context, arg CreateOrderItemRemovedIngredientParams) (OrderItemRemovedIngredient, error) {
	var ri OrderItemRemovedIngredient
	err := q.db.QueryRow(ctx, createOrderItemRemovedIngredient, arg.OrderItemID, arg.IngredientID, arg.Name).
		Scan(&ri.ID, &ri.OrderItemID, &ri.IngredientID, &ri.Name)
	return ri, err
}

const listOrderItemRemovedIngredients = `SELECT id, order_item_id, ingredient_id, name
FROM order_item_removed_ingredients WHERE order_item_id = $1 ORDER BY name`

func (q *Queries) ListOrderItemRemovedIngredients(ctx context.Context, orderItemID uuid.UUID) ([]OrderItemRemovedIngredient, error) {
	rows, err := q.db.Query(ctx, listOrderItemRemovedIngredients, orderItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItemRemovedIngredient
	for rows.Next() {
		var ri OrderItemRemovedIngredient
		if err := rows.Scan(&ri.ID, &ri.OrderItemID, &ri.IngredientID, &ri.Name); err != nil {
			return nil, err
		}
		items = append(items, ri)
	}
	return items, rows.Err()
}

// ── Status history (append-only) ──

type CreateOrderStatusHistoryParams struct {
	OrderID uuid.UUID
	Status  string
}

const createOrderStatusHistory = `INSERT INTO order_status_history (order_id, status)
VALUES ($1, $2)
RETURNING id, order_id, status, created_at`

func (q *Queries) CreateOrderStatusHistory(ctx context.Context, arg CreateOrderStatusHistoryParams) (OrderStatusHistory, error) {
	var h OrderStatusHistory
	err := q.db.QueryRow(ctx, createOrderStatusHistory, arg.OrderID, arg.Status).
		Scan(&h.ID, &h.OrderID, &h.Status, &h.CreatedAt)
	return h, err
}

const listOrderStatusHistory = `SELECT id, order_id, status, created_at
FROM order_status_history WHERE order_id = $1 ORDER BY created_at, id`

func (q *Queries) ListOrderStatusHistory(ctx context.Context, orderID uuid.UUID) ([]OrderStatusHistory, error) {
	rows, err := q.db.Query(ctx, listOrderStatusHistory, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderStatusHistory
	for rows.Next() {
		var h OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}
