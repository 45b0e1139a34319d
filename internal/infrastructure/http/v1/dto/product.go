package dto

import (
	"pneutrack/internal/core/types"
	"pneutrack/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest for creating tyre products.
type CreateProductRequest struct {
	Code        string  `json:"code,omitempty"`
	Name        string  `json:"name" binding:"required"`
	Brand       string  `json:"brand,omitempty"`
	Model       string  `json:"model,omitempty"`
	Width       int     `json:"width" binding:"required,gt=0"`
	AspectRatio int     `json:"aspectRatio" binding:"required,gt=0"`
	Diameter    int     `json:"diameter" binding:"required,gt=0"`
	Season      string  `json:"season" binding:"required"`
	Stock       int     `json:"stock" binding:"gte=0"`
	UnitPrice   float64 `json:"unitPrice" binding:"gte=0"`
}

// ToEntity converts the request to a domain product.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name)
	p.Brand = r.Brand
	p.Model = r.Model
	p.Width = r.Width
	p.AspectRatio = r.AspectRatio
	p.Diameter = r.Diameter
	p.Season = product.Season(r.Season)
	p.Stock = r.Stock
	p.UnitPrice = types.NewMoney(r.UnitPrice)
	return p
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Width       *int     `json:"width,omitempty"`
	AspectRatio *int     `json:"aspectRatio,omitempty"`
	Diameter    *int     `json:"diameter,omitempty"`
	Season      *string  `json:"season,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// ApplyTo applies non-nil fields onto the existing product.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Brand != nil {
		p.Brand = *r.Brand
	}
	if r.Model != nil {
		p.Model = *r.Model
	}
	if r.Width != nil {
		p.Width = *r.Width
	}
	if r.AspectRatio != nil {
		p.AspectRatio = *r.AspectRatio
	}
	if r.Diameter != nil {
		p.Diameter = *r.Diameter
	}
	if r.Season != nil {
		p.Season = product.Season(*r.Season)
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.UnitPrice != nil {
		p.UnitPrice = types.NewMoney(*r.UnitPrice)
	}
	if r.Active != nil {
		p.Active = *r.Active
	}
}

// --- Response DTOs ---

// ProductResponse represents a tyre product in API responses.
type ProductResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Brand        string `json:"brand,omitempty"`
	Model        string `json:"model,omitempty"`
	Width        int    `json:"width"`
	AspectRatio  int    `json:"aspectRatio"`
	Diameter     int    `json:"diameter"`
	Size         string `json:"size"`
	Season       string `json:"season"`
	Stock        int    `json:"stock"`
	UnitPrice    string `json:"unitPrice"`
	Active       bool   `json:"active"`
	DeletionMark bool   `json:"deletionMark,omitempty"`
	Version      int    `json:"version"`
}

// FromProduct creates a response from the domain product.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Brand:        p.Brand,
		Model:        p.Model,
		Width:        p.Width,
		AspectRatio:  p.AspectRatio,
		Diameter:     p.Diameter,
		Size:         p.SizeLabel(),
		Season:       string(p.Season),
		Stock:        p.Stock,
		UnitPrice:    p.UnitPrice.StringFixed(2),
		Active:       p.Active,
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
	}
}
