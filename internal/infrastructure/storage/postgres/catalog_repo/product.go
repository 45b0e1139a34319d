package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/id"
	"pneutrack/internal/domain/catalogs/product"
	"pneutrack/internal/infrastructure/storage/postgres"
)

// ProductRepo is the PostgreSQL repository for tyre products.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var productColumns = postgres.ExtractDBColumns[product.Product]()

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			"cat_products",
			productColumns,
			func() *product.Product { return &product.Product{} },
		),
	}
}

// AdjustStock atomically changes the stock level by delta.
// The WHERE guard refuses any change that would drive stock negative,
// so concurrent writers cannot oversell.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta int) error {
	q := r.Builder().
		Update("cat_products").
		Set("stock", squirrel.Expr("stock + ?", delta)).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Expr("stock + ? >= 0", delta))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build adjust stock: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the product does not exist or the adjustment would
		// push stock below zero. Re-read to tell the two apart.
		p, getErr := r.GetByID(ctx, productID)
		if getErr != nil {
			return getErr
		}
		return apperror.NewInsufficientStock(productID.String(), -delta, p.Stock)
	}

	return nil
}
