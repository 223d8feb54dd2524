package api

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestBearerTokenSuccess(t *testing.T) {
	token, err := bearerToken("Bearer header.payload.signature")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "header.payload.signature" {
		t.Fatalf("unexpected token content: %s", token)
	}
}

func TestBearerTokenMissing(t *testing.T) {
	if _, err := bearerToken(""); err == nil || err.Error() != "missing authorization header" {
		t.Fatalf("expected missing header error, got %v", err)
	}
}

func TestBearerTokenBadShape(t *testing.T) {
	testCases := map[string]string{
		"no_prefix":    "header.payload.signature",
		"empty_token":  "Bearer ",
		"one_period":   "Bearer header.payload",
		"many_periods": "Bearer " + strings.Repeat(".", 1000),
	}
	for name, header := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := bearerToken(header); err == nil || err.Error() != "bad auth header" {
				t.Fatalf("expected bad auth header error, got %v", err)
			}
		})
	}
}

func TestIssueTokenRoundTrip(t *testing.T) {
	auth := NewAuth([]byte("test-secret-test-secret"), time.Hour, "kanban-api")
	signed, err := auth.IssueToken("user-123", "gopher")
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	sub, err := auth.UserIDFromAuthHeader("Bearer " + signed)
	if err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}
	if sub != "user-123" {
		t.Fatalf("unexpected user id: %s", sub)
	}
}

func TestIssueTokenCarriesIssuer(t *testing.T) {
	auth := NewAuth([]byte("test-secret-test-secret"), time.Hour, "kanban-api")
	signed, err := auth.IssueToken("user-123", "gopher")
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	parsed, err := jwt.NewParser().Parse(signed, func(t *jwt.Token) (any, error) {
		return []byte("test-secret-test-secret"), nil
	})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["iss"] != "kanban-api" {
		t.Fatalf("unexpected issuer: %v", claims["iss"])
	}
	if claims["username"] != "gopher" {
		t.Fatalf("unexpected username claim: %v", claims["username"])
	}
}

func TestUserIDFromAuthHeaderExpired(t *testing.T) {
	auth := NewAuth([]byte("test-secret-test-secret"), -2*time.Hour, "kanban-api")
	signed, err := auth.IssueToken("user-123", "gopher")
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := auth.UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestUserIDFromAuthHeaderWrongSecret(t *testing.T) {
	auth := NewAuth([]byte("test-secret-test-secret"), time.Hour, "kanban-api")
	other := NewAuth([]byte("another-secret-entirely"), time.Hour, "kanban-api")
	signed, err := other.IssueToken("user-123", "gopher")
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := auth.UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected token signed with wrong secret to be rejected")
	}
}

func TestUserIDFromAuthHeaderMissingSub(t *testing.T) {
	secret := []byte("test-secret-test-secret")
	claims := jwt.MapClaims{
		"iss": "kanban-api",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	auth := NewAuth(secret, time.Hour, "kanban-api")
	if _, err := auth.UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected token without sub to be rejected")
	}
}

func TestUserIDFromAuthHeaderRejectsNone(t *testing.T) {
	// alg=none with a well-formed shape must never pass the parser.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	auth := NewAuth([]byte("test-secret-test-secret"), time.Hour, "kanban-api")
	if _, err := auth.UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}
