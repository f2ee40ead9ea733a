package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/baf/identity-service/internal/core/domain"
)

const collectionTenants = "tenants"

type TenantRepository struct {
	col *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) *TenantRepository {
	return &TenantRepository{col: db.Collection(collectionTenants)}
}

type tenantDoc struct {
	ID               string    `bson:"_id"`
	OrganizationName string    `bson:"organization_name,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
}

func (d tenantDoc) toDomain() (*domain.Tenant, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode tenant id %q: %w", d.ID, err)
	}
	return &domain.Tenant{ID: id, OrganizationName: d.OrganizationName, CreatedAt: d.CreatedAt}, nil
}

func (r *TenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := tenantDoc{ID: t.ID.String(), OrganizationName: t.OrganizationName, CreatedAt: t.CreatedAt.UTC()}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// FindByID returns domain.ErrNoTenantFound when the tenant does not exist.
func (r *TenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc tenantDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoTenantFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return doc.toDomain()
}
