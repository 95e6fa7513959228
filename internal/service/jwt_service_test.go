package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"secondchance-backend/internal/domain"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("secret", 15*time.Minute, "secondchance")
	if err != nil {
		t.Fatalf("new jwt service: %v", err)
	}
	return svc
}

func TestJWTService_IssueAndParse(t *testing.T) {
	svc := newTestJWTService(t)
	user := domain.User{ID: "u1", Email: "user@example.com"}

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.User.ID != "u1" || claims.User.Email != "user@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("expected exp claim")
	}
	if d := claims.ExpiresAt.Sub(claims.IssuedAt.Time); d != 15*time.Minute {
		t.Fatalf("expected 15m lifetime, got %v", d)
	}
}

func TestJWTService_PayloadShape(t *testing.T) {
	svc := newTestJWTService(t)
	token, err := svc.IssueToken(domain.User{ID: "abc123", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	raw := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, raw); err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	user, ok := raw["user"].(map[string]any)
	if !ok || user["id"] != "abc123" {
		t.Fatalf("expected payload {user:{id}}, got %+v", raw)
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	if _, err := NewJWTService("  ", time.Minute, ""); !errors.Is(err, ErrJWTSecretMissing) {
		t.Fatalf("expected ErrJWTSecretMissing, got %v", err)
	}

	var zero JWTService
	if _, err := zero.IssueToken(domain.User{ID: "u1"}); !errors.Is(err, ErrJWTSecretMissing) {
		t.Fatalf("expected ErrJWTSecretMissing from zero service, got %v", err)
	}
}

func TestJWTService_RejectsEmptyUserID(t *testing.T) {
	svc := newTestJWTService(t)
	if _, err := svc.IssueToken(domain.User{}); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService(t)
	token, err := svc.IssueToken(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	other, err := svc.IssueToken(domain.User{ID: "u2"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]
	if _, err := svc.ParseToken(forged); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for forged payload, got %v", err)
	}
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService(t)
	other, err := NewJWTService("other-secret", time.Minute, "secondchance")
	if err != nil {
		t.Fatalf("new jwt service: %v", err)
	}
	token, err := other.IssueToken(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.ParseToken(token); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := newTestJWTService(t)
	svc.now = func() time.Time { return time.Now().UTC().Add(-time.Hour) }
	token, err := svc.IssueToken(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	svc.now = func() time.Time { return time.Now().UTC() }

	if _, err := svc.ParseToken(token); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	svc := newTestJWTService(t)
	now := time.Now().UTC()
	claims := Claims{
		User: TokenUser{ID: "u1"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for wrong issuer, got %v", err)
	}
}

func TestJWTService_RejectsMissingExpiration(t *testing.T) {
	svc := newTestJWTService(t)
	claims := Claims{
		User:             TokenUser{ID: "u1"},
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "secondchance", Subject: "u1"},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid without exp, got %v", err)
	}
}
