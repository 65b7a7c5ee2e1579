//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/fritkot/api/internal/database"
	"github.com/fritkot/api/internal/router"
	"github.com/fritkot/api/internal/service"
	"github.com/fritkot/api/internal/ws"
)

const jwtSecret = "integration-test-secret"

// TestIntegrationFlow exercises the full ordering lifecycle against a real
// PostgreSQL database: catalog setup, order submission with server-side
// repricing, and the status state machine.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	_, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	runMigrations(t, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	queries := database.New(pool)
	orderSvc := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	statusSvc := service.NewStatusService(pool, func(db database.DBTX) service.StatusStore {
		return database.New(db)
	})
	hub := ws.NewHub()
	// hub.Run() goroutine leaks on test exit; the hub has no shutdown hook.
	go hub.Run()

	server := httptest.NewServer(router.New(jwtSecret, queries, orderSvc, statusSvc, hub))
	defer server.Close()

	// --- 1. Bootstrap an admin directly in the DB ---
	createAdminUser(t, ctx, pool)
	adminToken := login(t, server, "admin@test.com", "password123")

	// --- 2. Register a customer through the API ---
	customerToken := register(t, server, "client@test.com", "password123")

	// --- 3. Build the catalog as admin ---
	platID := createPlat(t, server, adminToken, map[string]any{
		"name":          "Mitraillette",
		"basePrice":     "8.00",
		"includesSauce": true,
		"saucePrice":    "0.50",
	})
	versionID := createVersion(t, server, adminToken, platID, "Grande", "1.50")
	sauceID := createSauce(t, server, adminToken, "Samourai", "1.20")
	extraID := createExtra(t, server, adminToken, "Fromage", "1.00")
	tagID := createTag(t, server, adminToken, "Fromages")

	// --- 3b. Group the extra under a tag; the public listing carries it ---
	doJSON(t, server, http.MethodPut,
		fmt.Sprintf("/admin/extras/%s/tags/%s", extraID, tagID),
		adminToken, nil, http.StatusNoContent)
	assertExtraHasTag(t, server, extraID, "Fromages")

	// --- 4. Submit an order: 8.00 + 1.50 + 0.50 + 1.00 = 11.00, qty 2 = 22.00,
	//     plus a standalone sauce at 1.20 = 23.20; delivery under 25.00 adds
	//     the 2.50 fee -> 25.70. ---
	orderID, total := submitOrder(t, server, customerToken, map[string]any{
		"type":            "DELIVERY",
		"deliveryAddress": "Rue du Marché 12, Bruxelles",
		"items": []map[string]any{
			{
				"platId":    platID,
				"versionId": versionID,
				"sauceId":   sauceID,
				"extraIds":  []string{extraID},
				"quantity":  2,
			},
			{
				"sauceId":  sauceID,
				"quantity": 1,
			},
		},
	})
	if total != "25.70" {
		t.Fatalf("order total: got %s, want 25.70", total)
	}

	// --- 5. Customer sees the order in their history, items in cart order ---
	assertOrderInHistory(t, server, customerToken, orderID, "Mitraillette", "Samourai")

	// --- 6. Walk the delivery lifecycle as staff (admin is staff too) ---
	for _, next := range []string{"CONFIRMED", "PREPARING", "READY", "OUT_FOR_DELIVERY", "DELIVERED"} {
		status := transition(t, server, adminToken, orderID, next, http.StatusOK)
		if status != next {
			t.Fatalf("transition: got %s, want %s", status, next)
		}
	}

	// --- 7. Terminal state rejects further transitions ---
	transition(t, server, adminToken, orderID, "PENDING", http.StatusConflict)

	// --- 8. Catalog price change does not touch the frozen order ---
	updatePlatPrice(t, server, adminToken, platID, "99.00")
	assertOrderTotal(t, server, adminToken, orderID, "25.70")

	// --- 9. A submission with an unknown plat persists nothing ---
	before := countOrders(t, ctx, pool)
	submitInvalidOrder(t, server, customerToken, uuid.NewString())
	after := countOrders(t, ctx, pool)
	if before != after {
		t.Fatalf("invalid submission persisted an order: %d -> %d", before, after)
	}

	// --- 10. A fractional quantity gets the quantity message, not a decode
	//     error ---
	resp := doJSON(t, server, http.MethodPost, "/orders", customerToken, map[string]any{
		"type": "TAKEOUT",
		"items": []map[string]any{
			{"platId": platID, "quantity": 1.5},
		},
	}, http.StatusBadRequest)
	if msg, _ := resp["error"].(string); !strings.Contains(msg, "Each item must have a valid positive quantity") {
		t.Fatalf("fractional quantity error: got %q", msg)
	}
}

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("fritkot_test"),
		tcpostgres.WithUsername("fritkot"),
		tcpostgres.WithPassword("fritkot"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

func createAdminUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	var id uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		"admin@test.com", string(hash), "Test Admin", "ADMIN",
	).Scan(&id)
	if err != nil {
		t.Fatalf("create admin user: %v", err)
	}
	return id
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any, wantStatus int) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d (body: %v)", method, path, resp.StatusCode, wantStatus, decoded)
	}
	return decoded
}

func register(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
		"fullName": "Test Client",
	}, http.StatusCreated)
	return resp["accessToken"].(string)
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	return resp["accessToken"].(string)
}

func createPlat(t *testing.T, server *httptest.Server, token string, body map[string]any) string {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, "/admin/plats", token, body, http.StatusCreated)
	return resp["id"].(string)
}

func createVersion(t *testing.T, server *httptest.Server, token, platID, size, extraPrice string) string {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, fmt.Sprintf("/admin/plats/%s/versions", platID), token,
		map[string]string{"size": size, "extraPrice": extraPrice}, http.StatusCreated)
	return resp["id"].(string)
}

func createSauce(t *testing.T, server *httptest.Server, token, name, price string) string {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, "/admin/sauces", token,
		map[string]string{"name": name, "price": price}, http.StatusCreated)
	return resp["id"].(string)
}

func createExtra(t *testing.T, server *httptest.Server, token, name, price string) string {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, "/admin/extras", token,
		map[string]string{"name": name, "price": price}, http.StatusCreated)
	return resp["id"].(string)
}

func createTag(t *testing.T, server *httptest.Server, token, name string) string {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, "/admin/tags", token,
		map[string]any{"name": name}, http.StatusCreated)
	return resp["id"].(string)
}

func assertExtraHasTag(t *testing.T, server *httptest.Server, extraID, tagName string) {
	t.Helper()

	resp, err := http.Get(server.URL + "/api/extras")
	if err != nil {
		t.Fatalf("GET /api/extras: %v", err)
	}
	defer resp.Body.Close()

	var extras []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&extras); err != nil {
		t.Fatalf("decode extras: %v", err)
	}

	for _, e := range extras {
		if e["id"].(string) != extraID {
			continue
		}
		tags, _ := e["tags"].([]any)
		for _, tag := range tags {
			if tag.(map[string]any)["name"].(string) == tagName {
				return
			}
		}
		t.Fatalf("extra %s is missing tag %s: %v", extraID, tagName, tags)
	}
	t.Fatalf("extra %s not in public listing", extraID)
}

func submitOrder(t *testing.T, server *httptest.Server, token string, body map[string]any) (string, string) {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, "/orders", token, body, http.StatusCreated)
	return resp["id"].(string), resp["totalPrice"].(string)
}

func submitInvalidOrder(t *testing.T, server *httptest.Server, token, unknownPlatID string) {
	t.Helper()
	doJSON(t, server, http.MethodPost, "/orders", token, map[string]any{
		"type": "TAKEOUT",
		"items": []map[string]any{
			{"platId": unknownPlatID, "quantity": 1},
		},
	}, http.StatusBadRequest)
}

func assertOrderInHistory(t *testing.T, server *httptest.Server, token, orderID string, itemNames ...string) {
	t.Helper()
	resp := doJSON(t, server, http.MethodGet, "/users/orders?page=1&limit=10", token, nil, http.StatusOK)
	orders, ok := resp["orders"].([]any)
	if !ok || len(orders) == 0 {
		t.Fatalf("expected at least one order in history: %v", resp)
	}
	first := orders[0].(map[string]any)
	if first["id"].(string) != orderID {
		t.Fatalf("history order id: got %v, want %s", first["id"], orderID)
	}

	items, _ := first["items"].([]any)
	if len(items) != len(itemNames) {
		t.Fatalf("history items: got %d, want %d", len(items), len(itemNames))
	}
	for i, want := range itemNames {
		got := items[i].(map[string]any)["name"].(string)
		if got != want {
			t.Fatalf("item[%d] name: got %s, want %s", i, got, want)
		}
	}
}

func transition(t *testing.T, server *httptest.Server, token, orderID, next string, wantStatus int) string {
	t.Helper()
	resp := doJSON(t, server, http.MethodPatch, fmt.Sprintf("/orders/%s/status", orderID), token,
		map[string]string{"status": next}, wantStatus)
	if wantStatus != http.StatusOK {
		return ""
	}
	return resp["status"].(string)
}

func updatePlatPrice(t *testing.T, server *httptest.Server, token, platID, price string) {
	t.Helper()
	doJSON(t, server, http.MethodPut, "/admin/plats/"+platID, token, map[string]any{
		"name":          "Mitraillette",
		"basePrice":     price,
		"includesSauce": true,
		"saucePrice":    "0.50",
	}, http.StatusOK)
}

func assertOrderTotal(t *testing.T, server *httptest.Server, token, orderID, want string) {
	t.Helper()
	resp := doJSON(t, server, http.MethodGet, "/orders/"+orderID, token, nil, http.StatusOK)
	if resp["totalPrice"].(string) != want {
		t.Fatalf("order total after catalog change: got %v, want %s", resp["totalPrice"], want)
	}
}

func countOrders(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return n
}
