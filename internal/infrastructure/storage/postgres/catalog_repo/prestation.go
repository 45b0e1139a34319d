package catalog_repo

import (
	"pneutrack/internal/domain/catalogs/prestation"
	"pneutrack/internal/infrastructure/storage/postgres"
)

// PrestationRepo is the PostgreSQL repository for workshop services.
type PrestationRepo struct {
	*BaseCatalogRepo[*prestation.Prestation]
}

var prestationColumns = postgres.ExtractDBColumns[prestation.Prestation]()

// NewPrestationRepo creates a new prestation repository.
func NewPrestationRepo(txm *postgres.TxManager) *PrestationRepo {
	return &PrestationRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			"cat_prestations",
			prestationColumns,
			func() *prestation.Prestation { return &prestation.Prestation{} },
		),
	}
}
