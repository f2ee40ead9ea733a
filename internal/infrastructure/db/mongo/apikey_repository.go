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

const collectionAPIKeys = "tenant_api_keys"

// APIKeyRepository keeps at most one key document per tenant.
type APIKeyRepository struct {
	col *mongo.Collection
}

func NewAPIKeyRepository(db *mongo.Database) *APIKeyRepository {
	return &APIKeyRepository{col: db.Collection(collectionAPIKeys)}
}

type apiKeyDoc struct {
	KeyID      string    `bson:"key_id"`
	TenantID   string    `bson:"tenant_id"`
	SecretHash string    `bson:"secret_hash"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d apiKeyDoc) toDomain() (*domain.TenantAPIKey, error) {
	id, err := uuid.Parse(d.KeyID)
	if err != nil {
		return nil, fmt.Errorf("decode api key id %q: %w", d.KeyID, err)
	}
	tenantID, err := uuid.Parse(d.TenantID)
	if err != nil {
		return nil, fmt.Errorf("decode tenant id %q: %w", d.TenantID, err)
	}
	return &domain.TenantAPIKey{ID: id, TenantID: tenantID, SecretHash: d.SecretHash, CreatedAt: d.CreatedAt}, nil
}

func (r *APIKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TenantAPIKey, error) {
	return r.findOne(ctx, bson.M{"key_id": id.String()})
}

func (r *APIKeyRepository) FindByTenantID(ctx context.Context, tenantID uuid.UUID) (*domain.TenantAPIKey, error) {
	return r.findOne(ctx, bson.M{"tenant_id": tenantID.String()})
}

// Replace upserts on tenant_id, so the previous key disappears in the same write.
func (r *APIKeyRepository) Replace(ctx context.Context, k *domain.TenantAPIKey) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := apiKeyDoc{
		KeyID:      k.ID.String(),
		TenantID:   k.TenantID.String(),
		SecretHash: k.SecretHash,
		CreatedAt:  k.CreatedAt.UTC(),
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"tenant_id": doc.TenantID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) findOne(ctx context.Context, filter bson.M) (*domain.TenantAPIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc apiKeyDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return doc.toDomain()
}

func (r *APIKeyRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "key_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
