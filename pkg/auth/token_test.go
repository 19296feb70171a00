package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/binflowhq/binflow-backend/pkg/config"
	"github.com/binflowhq/binflow-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "binflow-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     enums.UserRoleManager,
	}

	signed, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("user id mismatch: %s", claims.UserID)
	}
	if claims.TenantID != payload.TenantID {
		t.Fatalf("tenant id mismatch: %s", claims.TenantID)
	}
	if claims.Role != enums.UserRoleManager {
		t.Fatalf("role mismatch: %s", claims.Role)
	}
}

func TestMintAccessTokenRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig()
	valid := AccessTokenPayload{UserID: uuid.New(), TenantID: uuid.New(), Role: enums.UserRoleAdmin}

	cases := map[string]AccessTokenPayload{
		"missing user":   {TenantID: valid.TenantID, Role: valid.Role},
		"missing tenant": {UserID: valid.UserID, Role: valid.Role},
		"bad role":       {UserID: valid.UserID, TenantID: valid.TenantID, Role: "superuser"},
	}
	for name, payload := range cases {
		if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{UserID: uuid.New(), TenantID: uuid.New(), Role: enums.UserRoleOperator}

	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	mintCfg := testJWTConfig()
	signed, err := MintAccessToken(mintCfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(), TenantID: uuid.New(), Role: enums.UserRoleOperator,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	parseCfg := mintCfg
	parseCfg.Issuer = "other-issuer"
	if _, err := ParseAccessToken(parseCfg, signed); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}
