package catalog_repo

import (
	"pneutrack/internal/domain/catalogs/client"
	"pneutrack/internal/infrastructure/storage/postgres"
)

// ClientRepo is the PostgreSQL repository for clients.
type ClientRepo struct {
	*BaseCatalogRepo[*client.Client]
}

var clientColumns = postgres.ExtractDBColumns[client.Client]()

// NewClientRepo creates a new client repository.
func NewClientRepo(txm *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			"cat_clients",
			clientColumns,
			func() *client.Client { return &client.Client{} },
		),
	}
}
