package auth

import (
	"testing"

	"github.com/google/uuid"

	"github.com/fritkot/api/internal/enum"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(testSecret, userID, enum.UserRoleCustomer)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id: got %s, want %s", claims.UserID, userID)
	}
	if claims.Role != enum.UserRoleCustomer {
		t.Fatalf("role: got %s", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), enum.UserRoleStaff)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Fatal("expected validation error with wrong secret")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken(testSecret, "not.a.token"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestClaimsRoles(t *testing.T) {
	cases := []struct {
		role    string
		isStaff bool
		isAdmin bool
	}{
		{enum.UserRoleAdmin, true, true},
		{enum.UserRoleStaff, true, false},
		{enum.UserRoleCustomer, false, false},
	}
	for _, c := range cases {
		claims := &Claims{Role: c.role}
		if claims.IsStaff() != c.isStaff {
			t.Fatalf("%s: IsStaff = %v", c.role, claims.IsStaff())
		}
		if claims.IsAdmin() != c.isAdmin {
			t.Fatalf("%s: IsAdmin = %v", c.role, claims.IsAdmin())
		}
	}
}

func TestRefreshToken(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateRefreshToken(testSecret, userID)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}
	if token == "" {
		t.Fatal("empty refresh token")
	}
}
