// Package prestation provides the Prestation catalog (workshop services
// such as mounting, balancing, alignment).
package prestation

import (
	"context"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/entity"
	"pneutrack/internal/core/types"
)

// Prestation represents a billable workshop service. Has no stock.
type Prestation struct {
	entity.Catalog

	// Description is a detailed description shown on invoices
	Description string `db:"description" json:"description,omitempty"`

	// UnitPrice is the catalog price excluding VAT
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Active indicates the prestation can be billed
	Active bool `db:"active" json:"active"`
}

// NewPrestation creates a new Prestation with generated ID.
func NewPrestation(code, name string) *Prestation {
	return &Prestation{
		Catalog: entity.NewCatalog(code, name),
		Active:  true,
	}
}

// Validate implements entity.Validatable.
func (p *Prestation) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}

	return nil
}
