// Package client provides the Client catalog (shop customers).
package client

import (
	"context"
	"strings"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/entity"
)

// Client represents a customer of the shop.
type Client struct {
	entity.Catalog

	// Phone is the contact phone number
	Phone string `db:"phone" json:"phone,omitempty"`

	// Email is the contact email
	Email string `db:"email" json:"email,omitempty"`

	// Address is the postal address
	Address string `db:"address" json:"address,omitempty"`

	// Active indicates the client can be referenced by new documents
	Active bool `db:"active" json:"active"`
}

// NewClient creates a new Client with generated ID.
func NewClient(code, name string) *Client {
	return &Client{
		Catalog: entity.NewCatalog(code, name),
		Active:  true,
	}
}

// Validate implements entity.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email").
			WithDetail("value", c.Email)
	}

	return nil
}
