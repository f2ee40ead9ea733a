package upstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baf/identity-service/internal/core/domain"
)

func sign(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":            "10769150350006150715113082367",
		"email":          "alice@example.com",
		"email_verified": true,
		"name":           "Alice",
		"scope":          "openid email",
		"jti":            "jti-1",
		"iss":            "https://idp.example.com",
		"exp":            time.Now().Add(5 * time.Minute).Unix(),
	}
}

func TestJWTVerifier_Valid(t *testing.T) {
	v := NewJWTVerifier(map[string]string{"google": "secret"}, "https://idp.example.com")

	login, err := v.Verify(context.Background(), "google", sign(t, jwt.SigningMethodHS256, "secret", validClaims()))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if login.User.Name() != "10769150350006150715113082367" {
		t.Errorf("unexpected subject %s", login.User.Name())
	}
	if login.User.Email() != "alice@example.com" {
		t.Errorf("unexpected email %s", login.User.Email())
	}
	if !login.User.EmailVerified() {
		t.Errorf("expected email_verified carried over")
	}
	if login.TokenID != "jti-1" || login.ExpiresAt.IsZero() {
		t.Errorf("expected token id and expiry, got %+v", login)
	}

	want := map[string]bool{"OAUTH2_USER": true, "SCOPE_openid": true, "SCOPE_email": true}
	got := login.User.Authorities()
	if len(got) != len(want) {
		t.Fatalf("unexpected authorities %v", got)
	}
	for _, a := range got {
		if !want[a] {
			t.Errorf("unexpected authority %s", a)
		}
	}
}

func TestJWTVerifier_UnknownRegistration(t *testing.T) {
	v := NewJWTVerifier(map[string]string{"google": "secret"}, "")

	_, err := v.Verify(context.Background(), "github", sign(t, jwt.SigningMethodHS256, "secret", validClaims()))
	if !errors.Is(err, domain.ErrUnknownRegistration) {
		t.Fatalf("expected ErrUnknownRegistration, got: %v", err)
	}
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier(map[string]string{"google": "secret"}, "https://idp.example.com")

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noExp := validClaims()
	delete(noExp, "exp")
	noSub := validClaims()
	delete(noSub, "sub")
	noJTI := validClaims()
	delete(noJTI, "jti")
	otherIssuer := validClaims()
	otherIssuer["iss"] = "https://evil.example.com"

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: sign(t, jwt.SigningMethodHS256, "other", validClaims())},
		{name: "wrong algorithm", token: sign(t, jwt.SigningMethodHS512, "secret", validClaims())},
		{name: "expired", token: sign(t, jwt.SigningMethodHS256, "secret", expired)},
		{name: "no expiry", token: sign(t, jwt.SigningMethodHS256, "secret", noExp)},
		{name: "no subject", token: sign(t, jwt.SigningMethodHS256, "secret", noSub)},
		{name: "no token id", token: sign(t, jwt.SigningMethodHS256, "secret", noJTI)},
		{name: "other issuer", token: sign(t, jwt.SigningMethodHS256, "secret", otherIssuer)},
		{name: "garbage", token: "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), "google", tt.token)
			if !errors.Is(err, domain.ErrInvalidUpstreamToken) {
				t.Fatalf("expected ErrInvalidUpstreamToken, got: %v", err)
			}
		})
	}
}

func TestJWTVerifier_NoEmailClaim(t *testing.T) {
	v := NewJWTVerifier(map[string]string{"google": "secret"}, "")
	claims := validClaims()
	delete(claims, "email")

	login, err := v.Verify(context.Background(), "google", sign(t, jwt.SigningMethodHS256, "secret", claims))
	if err != nil {
		t.Fatalf("expected verification to succeed, got: %v", err)
	}
	if login.User.Email() != "" {
		t.Errorf("expected empty email")
	}
}
