package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/fritkot/api/internal/auth"
	"github.com/fritkot/api/internal/enum"
)

const testSecret = "test-secret"

func protectedHandler(t *testing.T, wantUserID uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("claims missing from context")
		}
		if claims.UserID != wantUserID {
			t.Fatalf("user id: got %s, want %s", claims.UserID, wantUserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateToken(testSecret, userID, enum.UserRoleCustomer)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	Authenticate(testSecret)(protectedHandler(t, userID)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	Authenticate(testSecret)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
	if called {
		t.Fatal("next handler was called")
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	Authenticate(testSecret)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

func TestRequireStaff(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{enum.UserRoleAdmin, http.StatusOK},
		{enum.UserRoleStaff, http.StatusOK},
		{enum.UserRoleCustomer, http.StatusForbidden},
	}
	for _, c := range cases {
		token, err := auth.GenerateToken(testSecret, uuid.New(), c.role)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		Authenticate(testSecret)(RequireStaff(ok)).ServeHTTP(rec, req)

		if rec.Code != c.want {
			t.Fatalf("%s: status got %d, want %d", c.role, rec.Code, c.want)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{enum.UserRoleAdmin, http.StatusOK},
		{enum.UserRoleStaff, http.StatusForbidden},
		{enum.UserRoleCustomer, http.StatusForbidden},
	}
	for _, c := range cases {
		token, err := auth.GenerateToken(testSecret, uuid.New(), c.role)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		Authenticate(testSecret)(RequireAdmin(ok)).ServeHTTP(rec, req)

		if rec.Code != c.want {
			t.Fatalf("%s: status got %d, want %d", c.role, rec.Code, c.want)
		}
	}
}
