package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-for-testing")

func TestGenerateToken(t *testing.T) {
	token, expiresAt, err := GenerateToken(Claims{UserID: 1, Username: "alice"}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if token == "" {
		t.Error("GenerateToken() returned empty token")
	}

	diff := time.Until(expiresAt) - time.Hour
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiresAt is off by more than 1 minute: %v", diff)
	}
}

func TestGenerateToken_UniquePerCall(t *testing.T) {
	token1, _, _ := GenerateToken(Claims{UserID: 1}, testSecret, time.Hour)
	token2, _, _ := GenerateToken(Claims{UserID: 1}, testSecret, time.Hour)

	if token1 == token2 {
		t.Error("two tokens for the same user in the same second must differ")
	}
}

func TestParseToken(t *testing.T) {
	in := Claims{UserID: 42, Email: "a@x.com", Username: "alice", FullName: "Alice A"}
	token, _, _ := GenerateToken(in, testSecret, time.Hour)

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.UserID != in.UserID {
		t.Errorf("UserID = %d, expected %d", claims.UserID, in.UserID)
	}
	if claims.Email != in.Email || claims.Username != in.Username || claims.FullName != in.FullName {
		t.Errorf("profile claims = %+v, expected %+v", claims, in)
	}
	if claims.Subject != "42" {
		t.Errorf("Subject = %q, expected %q", claims.Subject, "42")
	}
	if claims.ID == "" {
		t.Error("token id should be set")
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	invalidTokens := []string{
		"",
		"invalid",
		"not.a.token",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, token := range invalidTokens {
		_, err := ParseToken(token, testSecret)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ParseToken(%q) error = %v, expected ErrInvalidToken", token, err)
		}
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, _ := GenerateToken(Claims{UserID: 1}, []byte("original-secret"), time.Hour)

	_, err := ParseToken(token, []byte("different-secret"))
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _, _ := GenerateToken(Claims{UserID: 1}, testSecret, -time.Minute)

	_, err := ParseToken(token, testSecret)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseToken(token, testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("HS512 token should be rejected, got %v", err)
	}
}

func TestParseToken_MissingUserID(t *testing.T) {
	token, _, _ := GenerateToken(Claims{}, testSecret, time.Hour)

	if _, err := ParseToken(token, testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token without user id should be rejected, got %v", err)
	}
}
