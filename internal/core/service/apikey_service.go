package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/identity"
	"github.com/baf/identity-service/internal/core/ports"
	"github.com/baf/identity-service/internal/infrastructure/metrics"
)

const (
	apiKeySecretLength = 48
	apiKeyAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// APIKeyService manages the single API key each tenant may hold.
// Keys have the form <key-id>.<secret>; only a bcrypt hash of the secret is stored.
type APIKeyService struct {
	keys    ports.APIKeyRepository
	tenants ports.TenantRepository
	events  ports.AuthEventDispatcher
	log     zerolog.Logger
	now     func() time.Time
}

func NewAPIKeyService(
	keys ports.APIKeyRepository,
	tenants ports.TenantRepository,
	events ports.AuthEventDispatcher,
	log zerolog.Logger,
) *APIKeyService {
	return &APIKeyService{keys: keys, tenants: tenants, events: events, log: log, now: time.Now}
}

// Issue replaces the current tenant's key. The old key stops working
// immediately. Only owners and admins may issue keys.
func (s *APIKeyService) Issue(ctx context.Context) (*ports.IssuedAPIKey, error) {
	user, tenant, err := s.manager(ctx)
	if err != nil {
		return nil, err
	}

	secret, err := randomAlphanumeric(apiKeySecretLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("issue api key: %w", err)
	}

	key := &domain.TenantAPIKey{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		SecretHash: string(hash),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.keys.Replace(ctx, key); err != nil {
		return nil, fmt.Errorf("issue api key: %w", err)
	}

	s.events.Enqueue(domain.AuthEvent{
		Type:       domain.EventAPIKeyIssued,
		UserID:     user.ID,
		TenantID:   tenant.ID,
		Detail:     key.ID.String(),
		OccurredAt: key.CreatedAt,
	})
	s.log.Info().Str("tenant_id", tenant.ID.String()).Str("key_id", key.ID.String()).Msg("api key issued")

	return &ports.IssuedAPIKey{
		Key:       key.ID.String() + "." + secret,
		KeyID:     key.ID,
		TenantID:  tenant.ID,
		CreatedAt: key.CreatedAt,
	}, nil
}

// Describe returns the current tenant's key metadata.
func (s *APIKeyService) Describe(ctx context.Context) (*domain.TenantAPIKey, error) {
	_, tenant, err := s.manager(ctx)
	if err != nil {
		return nil, err
	}
	return s.keys.FindByTenantID(ctx, tenant.ID)
}

// Authenticate checks a raw key from a request header.
func (s *APIKeyService) Authenticate(ctx context.Context, raw string) (*domain.TenantAPIKeyAuthentication, error) {
	idPart, secret, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || secret == "" {
		metrics.APIKeyAuthTotal.WithLabelValues("malformed").Inc()
		return nil, domain.ErrInvalidAPIKey
	}
	keyID, err := uuid.Parse(idPart)
	if err != nil {
		metrics.APIKeyAuthTotal.WithLabelValues("malformed").Inc()
		return nil, domain.ErrInvalidAPIKey
	}

	key, err := s.keys.FindByID(ctx, keyID)
	if errors.Is(err, domain.ErrAPIKeyNotFound) {
		metrics.APIKeyAuthTotal.WithLabelValues("unknown").Inc()
		return nil, domain.ErrInvalidAPIKey
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate api key: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)) != nil {
		metrics.APIKeyAuthTotal.WithLabelValues("mismatch").Inc()
		return nil, domain.ErrInvalidAPIKey
	}

	tenant, err := s.tenants.FindByID(ctx, key.TenantID)
	if err != nil {
		return nil, fmt.Errorf("authenticate api key: %w", err)
	}

	metrics.APIKeyAuthTotal.WithLabelValues("success").Inc()
	return domain.NewTenantAPIKeyAuthentication(tenant, key.ID)
}

func (s *APIKeyService) manager(ctx context.Context) (*domain.User, *domain.Tenant, error) {
	user, err := identity.User(ctx)
	if err != nil {
		return nil, nil, err
	}
	tenant, err := identity.Tenant(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !identity.HasAnyRole(ctx, domain.RoleOwner, domain.RoleAdmin) {
		return nil, nil, domain.ErrForbidden
	}
	return user, tenant, nil
}

func randomAlphanumeric(n int) (string, error) {
	limit := big.NewInt(int64(len(apiKeyAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate api key: %w", err)
		}
		b[i] = apiKeyAlphabet[idx.Int64()]
	}
	return string(b), nil
}
