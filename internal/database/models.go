package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Plat struct {
	ID                   uuid.UUID
	Name                 string
	Description          pgtype.Text
	BasePrice            pgtype.Numeric
	Available            bool
	AvailableForDelivery bool
	Speciality           bool
	IncludesSauce        bool
	SaucePrice           pgtype.Numeric
	SortOrder            int32
	Image                pgtype.Text
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type PlatVersion struct {
	ID         uuid.UUID
	PlatID     uuid.UUID
	Size       string
	ExtraPrice pgtype.Numeric
	Image      pgtype.Text
}

type Sauce struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
	Available   bool
	Image       pgtype.Text
}

type Extra struct {
	ID                   uuid.UUID
	Name                 string
	Price                pgtype.Numeric
	Description          pgtype.Text
	Available            bool
	AvailableForDelivery bool
	Speciality           bool
}

type Ingredient struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Allergen    bool
	Image       pgtype.Text
}

// PlatIngredientRow is the join row joined with the ingredient name, as needed
// when freezing removed-ingredient references onto an order item.
type PlatIngredientRow struct {
	PlatID       uuid.UUID
	IngredientID uuid.UUID
	Name         string
	Allergen     bool
	Removable    bool
}

type Tag struct {
	ID         uuid.UUID
	Name       string
	Searchable bool
	SortOrder  int32
}

type Setting struct {
	Key   string
	Value string
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	CreatedAt    time.Time
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	OrderType       string
	Status          string
	TotalPrice      pgtype.Numeric
	DeliveryAddress pgtype.Text
	Message         pgtype.Text
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID             uuid.UUID
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

type OrderItemExtra struct {
	ID          uuid.UUID
	OrderItemID uuid.UUID
	ExtraID     pgtype.UUID
	Name        string
	Price       pgtype.Numeric
}

type OrderItemRemovedIngredient struct {
	ID           uuid.UUID
	OrderItemID  uuid.UUID
	IngredientID pgtype.UUID
	Name         string
}

type OrderStatusHistory struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    string
	CreatedAt time.Time
}
