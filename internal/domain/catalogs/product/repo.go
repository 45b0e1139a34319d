package product

import (
	"context"

	"pneutrack/internal/core/id"
	"pneutrack/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves a product with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// AdjustStock atomically applies a stock delta.
	// Fails when the resulting stock would go negative.
	AdjustStock(ctx context.Context, id id.ID, delta int) error
}
