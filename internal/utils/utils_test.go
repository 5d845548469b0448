package utils

import (
    "testing"

    "github.com/golang-jwt/jwt/v5"
    "golang.org/x/crypto/bcrypt"
)

func TestNewAccessTokenCarriesStore(t *testing.T) {
    tok, err := NewAccessToken("secret", 42, 7, 15)
    if err != nil {
        t.Fatalf("expected no error, got %v", err)
    }
    parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
    if err != nil || !parsed.Valid {
        t.Fatalf("expected valid token, got %v", err)
    }
    claims := parsed.Claims.(jwt.MapClaims)
    if claims["sub"] != "42" {
        t.Fatalf("expected sub 42, got %v", claims["sub"])
    }
    if claims["store_id"] != float64(7) {
        t.Fatalf("expected store_id 7, got %v", claims["store_id"])
    }
}

func TestPasswordRoundTrip(t *testing.T) {
    hash, err := HashPassword("hunter2", bcrypt.MinCost)
    if err != nil {
        t.Fatalf("expected no error, got %v", err)
    }
    if !VerifyPassword(hash, "hunter2") {
        t.Fatalf("expected password to verify")
    }
    if VerifyPassword(hash, "hunter3") {
        t.Fatalf("expected wrong password to fail")
    }
}
