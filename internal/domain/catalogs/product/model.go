// Package product provides the Product catalog (tires held in stock).
package product

import (
	"context"
	"fmt"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/entity"
	"pneutrack/internal/core/types"
)

// Season defines the tire season category.
type Season string

const (
	SeasonSummer    Season = "ete"
	SeasonWinter    Season = "hiver"
	SeasonAllSeason Season = "4saisons"
)

// Product represents a tire reference held in stock.
type Product struct {
	entity.Catalog

	// Brand is the tire manufacturer (e.g., Michelin)
	Brand string `db:"brand" json:"brand"`

	// Model is the manufacturer model name
	Model string `db:"model" json:"model"`

	// Tire size descriptors (e.g., 205/55 R16)
	Width       int `db:"width" json:"width"`
	AspectRatio int `db:"aspect_ratio" json:"aspectRatio"`
	Diameter    int `db:"diameter" json:"diameter"`

	// Season category
	Season Season `db:"season" json:"season"`

	// Stock is the on-hand quantity. Mutated only by invoice documents.
	Stock int `db:"stock" json:"stock"`

	// UnitPrice is the catalog price excluding VAT
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Active indicates the product can be sold
	Active bool `db:"active" json:"active"`
}

// NewProduct creates a new Product with generated ID.
func NewProduct(code, name string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		Season:  SeasonSummer,
		Active:  true,
	}
}

// SizeLabel returns the conventional tire size notation.
func (p *Product) SizeLabel() string {
	return fmt.Sprintf("%d/%d R%d", p.Width, p.AspectRatio, p.Diameter)
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidSeason(p.Season) {
		return apperror.NewValidation("invalid season").
			WithDetail("field", "season").
			WithDetail("value", string(p.Season))
	}

	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}

	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}

	return nil
}

func isValidSeason(s Season) bool {
	switch s {
	case SeasonSummer, SeasonWinter, SeasonAllSeason:
		return true
	}
	return false
}
