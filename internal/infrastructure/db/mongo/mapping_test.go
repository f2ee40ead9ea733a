package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
)

func TestUserDoc_RoundTrip(t *testing.T) {
	u := &domain.User{ID: uuid.New(), Name: "Alice", Email: "  Alice@Example.COM ", CreatedAt: time.Now()}

	doc := newUserDoc(u)
	if doc.Email != "alice@example.com" {
		t.Errorf("expected normalised email, got %q", doc.Email)
	}
	got, err := doc.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if got.ID != u.ID || got.Name != "Alice" {
		t.Errorf("unexpected user %+v", got)
	}
}

func TestUserDoc_BadID(t *testing.T) {
	if _, err := (userDoc{ID: "not-a-uuid"}).toDomain(); err == nil {
		t.Fatal("expected error")
	}
}

func TestAPIKeyDoc_ToDomain(t *testing.T) {
	keyID, tenantID := uuid.New(), uuid.New()
	got, err := apiKeyDoc{KeyID: keyID.String(), TenantID: tenantID.String(), SecretHash: "h"}.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if got.ID != keyID || got.TenantID != tenantID || got.SecretHash != "h" {
		t.Errorf("unexpected key %+v", got)
	}
}

func TestAuthEventDoc_OmitsUnknownFields(t *testing.T) {
	now := time.Now().UTC()
	doc := authEventDoc(&domain.AuthEvent{Type: domain.EventLoginFailed, RegistrationID: "google", OccurredAt: now}, now)

	if doc["type"] != "login_failed" || doc["registration_id"] != "google" {
		t.Errorf("unexpected doc %v", doc)
	}
	for _, k := range []string{"user_id", "tenant_id", "subject", "detail"} {
		if _, ok := doc[k]; ok {
			t.Errorf("expected %s omitted", k)
		}
	}
}

func TestMembershipDoc_ToDomain(t *testing.T) {
	userID, tenantID := uuid.New(), uuid.New()
	got, err := membershipDoc{UserID: userID.String(), TenantID: tenantID.String(), Role: domain.RoleAdmin}.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if got.UserID != userID || got.TenantID != tenantID || got.Role != domain.RoleAdmin {
		t.Errorf("unexpected membership %+v", got)
	}

	if _, err := (membershipDoc{UserID: userID.String(), TenantID: "x"}).toDomain(); err == nil {
		t.Error("expected error for bad tenant id")
	}
}

func TestTransactor_Disabled_RunsDirectly(t *testing.T) {
	calls := 0
	err := NewTransactor(nil, false).WithinTransaction(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("expected one direct call, got calls=%d err=%v", calls, err)
	}
}
