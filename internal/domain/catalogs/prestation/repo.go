package prestation

import (
	"pneutrack/internal/domain"
)

// Repository defines the interface for Prestation persistence.
type Repository interface {
	domain.CatalogRepository[*Prestation]
}
