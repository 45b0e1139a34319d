package dto

import (
	"pneutrack/internal/core/types"
	"pneutrack/internal/domain/catalogs/prestation"
)

// --- Request DTOs ---

// CreatePrestationRequest for creating workshop services.
type CreatePrestationRequest struct {
	Code        string  `json:"code,omitempty"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description,omitempty"`
	UnitPrice   float64 `json:"unitPrice" binding:"gte=0"`
}

// ToEntity converts the request to a domain prestation.
func (r *CreatePrestationRequest) ToEntity() *prestation.Prestation {
	p := prestation.NewPrestation(r.Code, r.Name)
	p.Description = r.Description
	p.UnitPrice = types.NewMoney(r.UnitPrice)
	return p
}

// UpdatePrestationRequest for updating workshop services.
type UpdatePrestationRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// ApplyTo applies non-nil fields onto the existing prestation.
func (r *UpdatePrestationRequest) ApplyTo(p *prestation.Prestation) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.UnitPrice != nil {
		p.UnitPrice = types.NewMoney(*r.UnitPrice)
	}
	if r.Active != nil {
		p.Active = *r.Active
	}
}

// --- Response DTOs ---

// PrestationResponse represents a workshop service in API responses.
type PrestationResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	UnitPrice    string `json:"unitPrice"`
	Active       bool   `json:"active"`
	DeletionMark bool   `json:"deletionMark,omitempty"`
	Version      int    `json:"version"`
}

// FromPrestation creates a response from the domain prestation.
func FromPrestation(p *prestation.Prestation) *PrestationResponse {
	return &PrestationResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		UnitPrice:    p.UnitPrice.StringFixed(2),
		Active:       p.Active,
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
	}
}
