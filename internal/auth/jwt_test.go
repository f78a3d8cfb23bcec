package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"hrportal/internal/database"
)

var testAccount = database.Account{
	ID:       uuid.MustParse("3e7b1e6a-9f1d-4c4e-8a2b-0d6f5e4c3b2a"),
	Username: "alice",
	Email:    "a@x.com",
	Role:     database.RoleEmployee,
	Status:   database.StatusActive,
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, time.Hour, &testAccount)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := VerifyToken(secret, token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}

	if claims.AccountID != testAccount.ID {
		t.Errorf("AccountID = %v; want %v", claims.AccountID, testAccount.ID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q; want %q", claims.Username, "alice")
	}
	if claims.Role != database.RoleEmployee {
		t.Errorf("Role = %q; want %q", claims.Role, database.RoleEmployee)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret-a"), time.Hour, &testAccount)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyToken([]byte("secret-b"), token); err == nil {
		t.Error("VerifyToken accepted a token signed with a different secret")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := GenerateToken([]byte("test-secret"), -time.Minute, &testAccount)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyToken([]byte("test-secret"), token); err == nil {
		t.Error("VerifyToken accepted an expired token")
	}
}

func TestVerifyTokenMalformed(t *testing.T) {
	testCases := []string{"", "not.a.token", "abcdef"}

	for _, tc := range testCases {
		if _, err := VerifyToken([]byte("test-secret"), tc); err == nil {
			t.Errorf("VerifyToken(%q) succeeded; want error", tc)
		}
	}
}
