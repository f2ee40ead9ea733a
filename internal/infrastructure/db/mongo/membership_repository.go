package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baf/identity-service/internal/core/domain"
)

const collectionMemberships = "memberships"

// MembershipRepository stores one document per (user, tenant, role).
type MembershipRepository struct {
	col *mongo.Collection
}

func NewMembershipRepository(db *mongo.Database) *MembershipRepository {
	return &MembershipRepository{col: db.Collection(collectionMemberships)}
}

type membershipDoc struct {
	UserID    string    `bson:"user_id"`
	TenantID  string    `bson:"tenant_id"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d membershipDoc) toDomain() (domain.Membership, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return domain.Membership{}, fmt.Errorf("decode user id %q: %w", d.UserID, err)
	}
	tenantID, err := uuid.Parse(d.TenantID)
	if err != nil {
		return domain.Membership{}, fmt.Errorf("decode tenant id %q: %w", d.TenantID, err)
	}
	return domain.Membership{UserID: userID, TenantID: tenantID, Role: d.Role, CreatedAt: d.CreatedAt}, nil
}

func (r *MembershipRepository) Insert(ctx context.Context, m *domain.Membership) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := membershipDoc{
		UserID:    m.UserID.String(),
		TenantID:  m.TenantID.String(),
		Role:      m.Role,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// FirstTenantID returns the tenant of the user's oldest membership.
func (r *MembershipRepository) FirstTenantID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	var doc membershipDoc
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID.String()}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return uuid.Nil, domain.ErrNoTenantFound
		}
		return uuid.Nil, fmt.Errorf("find first tenant: %w", err)
	}
	return uuid.Parse(doc.TenantID)
}

func (r *MembershipRepository) TenantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.col.Distinct(ctx, "tenant_id", bson.M{"user_id": userID.String()})
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("decode tenant id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *MembershipRepository) Roles(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID.String(), "tenant_id": tenantID.String()}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	var docs []membershipDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	roles := make([]string, 0, len(docs))
	for _, d := range docs {
		roles = append(roles, d.Role)
	}
	return roles, nil
}

func (r *MembershipRepository) Members(ctx context.Context, tenantID uuid.UUID) ([]domain.Membership, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"tenant_id": tenantID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	var docs []membershipDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}

	out := make([]domain.Membership, 0, len(docs))
	for _, d := range docs {
		m, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MembershipRepository) CountOwners(ctx context.Context, tenantID uuid.UUID) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"tenant_id": tenantID.String(), "role": domain.RoleOwner})
	if err != nil {
		return 0, fmt.Errorf("count owners: %w", err)
	}
	return int(n), nil
}

// ReplaceRoles runs a delete and an insert; callers wrap it in a transaction.
func (r *MembershipRepository) ReplaceRoles(ctx context.Context, userID, tenantID uuid.UUID, roles []string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID.String(), "tenant_id": tenantID.String()}
	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("clear roles: %w", err)
	}
	if len(roles) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(roles))
	for _, role := range roles {
		docs = append(docs, membershipDoc{
			UserID:    userID.String(),
			TenantID:  tenantID.String(),
			Role:      role,
			CreatedAt: now,
		})
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("grant roles: %w", err)
	}
	return nil
}

func (r *MembershipRepository) Remove(ctx context.Context, userID, tenantID uuid.UUID) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID.String(), "tenant_id": tenantID.String()})
	if err != nil {
		return 0, fmt.Errorf("remove member: %w", err)
	}
	return int(res.DeletedCount), nil
}

// EnsureIndexes makes (user, tenant, role) unique.
func (r *MembershipRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
