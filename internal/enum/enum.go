package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending        = "PENDING"
	OrderStatusConfirmed      = "CONFIRMED"
	OrderStatusPreparing      = "PREPARING"
	OrderStatusReady          = "READY"
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCompleted      = "COMPLETED"
	OrderStatusCancelled      = "CANCELLED"
)

// StatusOrdinal maps each status to its position in the normal flow.
// Cancelled sits after the terminal states.
var StatusOrdinal = map[string]int{
	OrderStatusPending:        0,
	OrderStatusConfirmed:      1,
	OrderStatusPreparing:      2,
	OrderStatusReady:          3,
	OrderStatusOutForDelivery: 4,
	OrderStatusDelivered:      5,
	OrderStatusCompleted:      6,
	OrderStatusCancelled:      7,
}

// StatusText holds the customer-facing labels shown in the SPA and kiosk.
var StatusText = map[string]string{
	OrderStatusPending:        "En attente",
	OrderStatusConfirmed:      "Confirmée",
	OrderStatusPreparing:      "En préparation",
	OrderStatusReady:          "Prête",
	OrderStatusOutForDelivery: "En livraison",
	OrderStatusDelivered:      "Livrée",
	OrderStatusCompleted:      "Terminée",
	OrderStatusCancelled:      "Annulée",
}

const (
	OrderTypeTakeout  = "TAKEOUT"
	OrderTypeDelivery = "DELIVERY"
)

const (
	UserRoleAdmin    = "ADMIN"
	UserRoleStaff    = "STAFF"
	UserRoleCustomer = "CUSTOMER"
)

// ── Settings keys (key/value store, no DB constraint) ──

const (
	SettingEnableSpecialities   = "enableSpecialites"
	SettingEnableOnlinePickup   = "enableOnlinePickup"
	SettingEnableOnlineDelivery = "enableOnlineDelivery"
)
