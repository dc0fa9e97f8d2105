package auth

import (
	"testing"
	"time"

	"github.com/solystore/pointshop-backend/pkg/collections/models"
	"github.com/solystore/pointshop-backend/pkg/config"
)

var testConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "pointshop",
	ExpirationMinutes: 60,
}

func TestMintAndParseRoundTrip(t *testing.T) {
	now := time.Now()
	token, err := MintAccessToken(testConfig, now, AccessTokenPayload{
		UserID:   "u1",
		Username: "alice",
		Role:     models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(testConfig, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("userID = %q, want u1", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("username = %q, want alice", claims.Username)
	}
	if claims.Role != models.RoleAdmin {
		t.Fatalf("role = %d, want admin", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("token has no jti")
	}
}

func TestMintValidation(t *testing.T) {
	now := time.Now()
	payload := AccessTokenPayload{UserID: "u1", Username: "alice", Role: models.RoleMember}

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
	}{
		{"missing secret", config.JWTConfig{Issuer: "x", ExpirationMinutes: 5}, payload},
		{"missing issuer", config.JWTConfig{Secret: "x", ExpirationMinutes: 5}, payload},
		{"zero ttl", config.JWTConfig{Secret: "x", Issuer: "x"}, payload},
		{"missing user", testConfig, AccessTokenPayload{Role: models.RoleMember}},
		{"invalid role", testConfig, AccessTokenPayload{UserID: "u1", Role: 7}},
	}
	for _, tc := range cases {
		if _, err := MintAccessToken(tc.cfg, now, tc.payload); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testConfig, time.Now(), AccessTokenPayload{UserID: "u1", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := testConfig
	other.Secret = "different-secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig
	cfg.Issuer = "someone-else"
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: "u1", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(testConfig, token); err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := MintAccessToken(testConfig, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: "u1", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(testConfig, token); err == nil {
		t.Fatal("expected error for expired token")
	}
}
