package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byEmail   map[string]*domain.User
	findErr   error
	createErr error
	created   []*domain.User
	verified  []uuid.UUID
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byEmail: map[string]*domain.User{}}
	for _, u := range users {
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byEmail[u.Email] = u
	r.created = append(r.created, u)
	return nil
}

func (r *stubUserRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	for _, u := range r.byEmail {
		if u.ID == id {
			r.verified = append(r.verified, id)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type stubTenantRepo struct {
	byID      map[uuid.UUID]*domain.Tenant
	createErr error
	created   []*domain.Tenant
}

func newStubTenantRepo(tenants ...*domain.Tenant) *stubTenantRepo {
	r := &stubTenantRepo{byID: map[uuid.UUID]*domain.Tenant{}}
	for _, t := range tenants {
		r.byID[t.ID] = t
	}
	return r
}

func (r *stubTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Tenant, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNoTenantFound
	}
	return t, nil
}

func (r *stubTenantRepo) Create(_ context.Context, t *domain.Tenant) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[t.ID] = t
	r.created = append(r.created, t)
	return nil
}

// stubMembershipRepo keeps memberships in insertion order, so the first
// membership of a user is also its oldest.
type stubMembershipRepo struct {
	memberships []domain.Membership
	err         error
}

func (r *stubMembershipRepo) FirstTenantID(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	for _, m := range r.memberships {
		if m.UserID == userID {
			return m.TenantID, nil
		}
	}
	return uuid.Nil, domain.ErrNoTenantFound
}

func (r *stubMembershipRepo) TenantIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if r.err != nil {
		return nil, r.err
	}
	var ids []uuid.UUID
	for _, m := range r.memberships {
		if m.UserID == userID && !containsID(ids, m.TenantID) {
			ids = append(ids, m.TenantID)
		}
	}
	return ids, nil
}

func (r *stubMembershipRepo) Roles(_ context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	var roles []string
	for _, m := range r.memberships {
		if m.UserID == userID && m.TenantID == tenantID {
			roles = append(roles, m.Role)
		}
	}
	return roles, nil
}

func (r *stubMembershipRepo) Insert(_ context.Context, m *domain.Membership) error {
	r.memberships = append(r.memberships, *m)
	return nil
}

func (r *stubMembershipRepo) Members(_ context.Context, tenantID uuid.UUID) ([]domain.Membership, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Membership
	for _, m := range r.memberships {
		if m.TenantID == tenantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMembershipRepo) CountOwners(_ context.Context, tenantID uuid.UUID) (int, error) {
	n := 0
	for _, m := range r.memberships {
		if m.TenantID == tenantID && m.Role == domain.RoleOwner {
			n++
		}
	}
	return n, nil
}

func (r *stubMembershipRepo) ReplaceRoles(ctx context.Context, userID, tenantID uuid.UUID, roles []string) error {
	if _, err := r.Remove(ctx, userID, tenantID); err != nil {
		return err
	}
	for _, role := range roles {
		r.memberships = append(r.memberships, domain.Membership{UserID: userID, TenantID: tenantID, Role: role})
	}
	return nil
}

func (r *stubMembershipRepo) Remove(_ context.Context, userID, tenantID uuid.UUID) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	kept := r.memberships[:0:0]
	for _, m := range r.memberships {
		if m.UserID != userID || m.TenantID != tenantID {
			kept = append(kept, m)
		}
	}
	removed := len(r.memberships) - len(kept)
	r.memberships = kept
	return removed, nil
}

// stubTransactor restores the in-memory repositories when fn fails.
type stubTransactor struct {
	calls       int
	users       *stubUserRepo
	tenants     *stubTenantRepo
	memberships *stubMembershipRepo
}

func (t *stubTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	t.calls++

	users := make(map[string]*domain.User, len(t.users.byEmail))
	for k, v := range t.users.byEmail {
		users[k] = v
	}
	usersCreated := t.users.created
	tenants := make(map[uuid.UUID]*domain.Tenant, len(t.tenants.byID))
	for k, v := range t.tenants.byID {
		tenants[k] = v
	}
	tenantsCreated := t.tenants.created
	memberships := append([]domain.Membership(nil), t.memberships.memberships...)

	if err := fn(ctx); err != nil {
		t.users.byEmail, t.users.created = users, usersCreated
		t.tenants.byID, t.tenants.created = tenants, tenantsCreated
		t.memberships.memberships = memberships
		return err
	}
	return nil
}

type stubAPIKeyRepo struct {
	byTenant map[uuid.UUID]*domain.TenantAPIKey
}

func newStubAPIKeyRepo() *stubAPIKeyRepo {
	return &stubAPIKeyRepo{byTenant: map[uuid.UUID]*domain.TenantAPIKey{}}
}

func (r *stubAPIKeyRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.TenantAPIKey, error) {
	for _, k := range r.byTenant {
		if k.ID == id {
			return k, nil
		}
	}
	return nil, domain.ErrAPIKeyNotFound
}

func (r *stubAPIKeyRepo) FindByTenantID(_ context.Context, tenantID uuid.UUID) (*domain.TenantAPIKey, error) {
	k, ok := r.byTenant[tenantID]
	if !ok {
		return nil, domain.ErrAPIKeyNotFound
	}
	return k, nil
}

func (r *stubAPIKeyRepo) Replace(_ context.Context, k *domain.TenantAPIKey) error {
	r.byTenant[k.TenantID] = k
	return nil
}

type stubSessionStore struct {
	sessions  map[string]*domain.Session
	createErr error
	deleted   []string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: map[string]*domain.Session{}}
}

func (s *stubSessionStore) Create(_ context.Context, sess *domain.Session) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubSessionStore) Replace(_ context.Context, sess *domain.Session) error {
	if _, ok := s.sessions[sess.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubReplayGuard struct {
	claimed map[string]bool
	err     error
}

func (g *stubReplayGuard) Claim(_ context.Context, reg, tokenID string, _ time.Duration) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.claimed == nil {
		g.claimed = map[string]bool{}
	}
	key := reg + ":" + tokenID
	if g.claimed[key] {
		return false, nil
	}
	g.claimed[key] = true
	return true, nil
}

type stubVerifier struct {
	login *ports.UpstreamLogin
	err   error
}

func (v *stubVerifier) Verify(_ context.Context, _, _ string) (*ports.UpstreamLogin, error) {
	return v.login, v.err
}

type recordingDispatcher struct {
	events []domain.AuthEvent
}

func (d *recordingDispatcher) Enqueue(e domain.AuthEvent) {
	d.events = append(d.events, e)
}

func (d *recordingDispatcher) types() []domain.AuthEventType {
	out := make([]domain.AuthEventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type stubAuthEventRepo struct {
	err      error
	inserted []*domain.AuthEvent
}

func (r *stubAuthEventRepo) Insert(_ context.Context, e *domain.AuthEvent) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, e)
	return nil
}

// ---------------------------------------------------------------------------
// Fixture: alice owns "acme" and is a plain user of "globex".
// ---------------------------------------------------------------------------

type fixture struct {
	alice       *domain.User
	acme        *domain.Tenant
	globex      *domain.Tenant
	users       *stubUserRepo
	tenants     *stubTenantRepo
	memberships *stubMembershipRepo
	tx          *stubTransactor
	details     *AuthenticationDetailsService
	provider    *OAuth2AuthenticationProvider
}

func newFixture() *fixture {
	f := &fixture{
		alice:  &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"},
		acme:   &domain.Tenant{ID: uuid.New(), OrganizationName: "Acme"},
		globex: &domain.Tenant{ID: uuid.New(), OrganizationName: "Globex"},
	}
	f.users = newStubUserRepo(f.alice)
	f.tenants = newStubTenantRepo(f.acme, f.globex)
	f.memberships = &stubMembershipRepo{memberships: []domain.Membership{
		{UserID: f.alice.ID, TenantID: f.acme.ID, Role: domain.RoleOwner},
		{UserID: f.alice.ID, TenantID: f.globex.ID, Role: domain.RoleUser},
	}}
	f.tx = &stubTransactor{users: f.users, tenants: f.tenants, memberships: f.memberships}
	f.details = NewAuthenticationDetailsService(f.users, f.tenants, f.memberships)
	f.provider = NewOAuth2AuthenticationProvider(f.details)
	return f
}

func upstreamUser(email string) *domain.OAuth2User {
	attrs := map[string]any{"name": "Alice"}
	if email != "" {
		attrs["email"] = email
	}
	u, err := domain.NewOAuth2User("sub-123", attrs, []string{"OAUTH2_USER", "SCOPE_email"})
	if err != nil {
		panic(err)
	}
	return u
}
