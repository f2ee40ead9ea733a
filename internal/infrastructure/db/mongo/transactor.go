package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/baf/identity-service/internal/core/ports"
)

// Transactor runs units of work in a MongoDB session transaction. Repository
// calls made with the context passed to fn join the transaction.
// Transactions need a replica set; with enabled false fn runs directly.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

var _ ports.Transactor = (*Transactor)(nil)

func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	return &Transactor{client: client, enabled: enabled}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}
	return t.client.UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := sc.WithTransaction(sc, func(txCtx mongo.SessionContext) (interface{}, error) {
			return nil, fn(txCtx)
		})
		return err
	})
}
