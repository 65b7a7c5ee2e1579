package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fritkot/api/internal/database"
	"github.com/fritkot/api/internal/handler"
	"github.com/fritkot/api/internal/middleware"
	"github.com/fritkot/api/internal/service"
	"github.com/fritkot/api/internal/ws"
)

// New assembles the full HTTP surface: public catalog reads, customer
// ordering, the staff board and the admin back office.
func New(jwtSecret string, queries *database.Queries, orders *service.OrderService, status *service.StatusService, hub *ws.Hub) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authHandler := handler.NewAuthHandler(queries, jwtSecret)
	platHandler := handler.NewPlatHandler(queries)
	sauceHandler := handler.NewSauceHandler(queries)
	extraHandler := handler.NewExtraHandler(queries)
	ingredientHandler := handler.NewIngredientHandler(queries)
	tagHandler := handler.NewTagHandler(queries)
	settingHandler := handler.NewSettingHandler(queries)
	orderHandler := handler.NewOrderHandler(orders, status, queries, hub)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Public: menu browsing and authentication.
	authHandler.RegisterRoutes(r)
	platHandler.RegisterPublicRoutes(r)
	sauceHandler.RegisterPublicRoutes(r)
	extraHandler.RegisterPublicRoutes(r)
	ingredientHandler.RegisterPublicRoutes(r)
	tagHandler.RegisterPublicRoutes(r)
	settingHandler.RegisterPublicRoutes(r)

	// Authenticated customers: submit orders, read own history.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		orderHandler.RegisterCustomerRoutes(r)
	})

	// Staff: the live order board.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireStaff)
		orderHandler.RegisterStaffRoutes(r)
	})

	// Admin back office: catalog and settings management.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireAdmin)
		platHandler.RegisterAdminRoutes(r)
		sauceHandler.RegisterAdminRoutes(r)
		extraHandler.RegisterAdminRoutes(r)
		ingredientHandler.RegisterAdminRoutes(r)
		tagHandler.RegisterAdminRoutes(r)
		settingHandler.RegisterAdminRoutes(r)
	})

	// Live order feed for cashier/kiosk views; token checked in the handler
	// because browsers cannot set headers on WebSocket upgrades.
	r.Get("/ws/orders", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(hub, jwtSecret, w, req)
	})

	return r
}
