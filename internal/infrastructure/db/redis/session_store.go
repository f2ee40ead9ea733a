package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baf/identity-service/internal/core/domain"
)

const sessionPrefix = "session:"

// SessionStore keeps sessions as JSON documents expiring with the session.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

type sessionRecord struct {
	ID             string         `json:"id"`
	RegistrationID string         `json:"registration_id"`
	Subject        string         `json:"subject"`
	Attributes     map[string]any `json:"attributes"`
	Upstream       []string       `json:"upstream_authorities"`
	Authorities    []string       `json:"authorities"`
	User           domain.User    `json:"user"`
	Tenant         domain.Tenant  `json:"tenant"`
	CreatedAt      time.Time      `json:"created_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	return s.write(ctx, sess, false)
}

// Replace overwrites an existing session, keeping its expiry.
func (s *SessionStore) Replace(ctx context.Context, sess *domain.Session) error {
	return s.write(ctx, sess, true)
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, sessionPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return rec.toSession()
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStore) write(ctx context.Context, sess *domain.Session, mustExist bool) error {
	if sess == nil || sess.ID == "" || sess.Principal == nil {
		return fmt.Errorf("session: %w: id and principal are required", domain.ErrInvalidArgument)
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session: %w: expires_at must be in the future", domain.ErrInvalidArgument)
	}

	data, err := json.Marshal(newSessionRecord(sess))
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	key := sessionPrefix + sess.ID
	if !mustExist {
		if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
			return fmt.Errorf("session create: %w", err)
		}
		return nil
	}

	ok, err := s.client.SetXX(ctx, key, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("session replace: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func newSessionRecord(sess *domain.Session) sessionRecord {
	p := sess.Principal
	return sessionRecord{
		ID:             sess.ID,
		RegistrationID: p.ProviderRegistrationID(),
		Subject:        p.Name(),
		Attributes:     p.Upstream().Attributes(),
		Upstream:       p.Upstream().Authorities(),
		Authorities:    p.Authorities(),
		User:           *p.User(),
		Tenant:         *p.Tenant(),
		CreatedAt:      sess.CreatedAt,
		ExpiresAt:      sess.ExpiresAt,
	}
}

// toSession rebuilds the principal through its constructors so a stored
// record never yields a principal without user or tenant.
func (r sessionRecord) toSession() (*domain.Session, error) {
	upstream, err := domain.NewOAuth2User(r.Subject, r.Attributes, r.Upstream)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", r.ID, err)
	}
	user, tenant := r.User, r.Tenant
	p, err := domain.NewAuthenticatedPrincipal(upstream, r.Authorities, r.RegistrationID, &user, &tenant)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", r.ID, err)
	}
	return &domain.Session{
		ID:        r.ID,
		Principal: p,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}, nil
}
