package dto

import (
	"pneutrack/internal/domain/catalogs/client"
)

// --- Request DTOs ---

// CreateClientRequest for creating clients.
type CreateClientRequest struct {
	Code    string `json:"code,omitempty"`
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// ToEntity converts the request to a domain client.
func (r *CreateClientRequest) ToEntity() *client.Client {
	c := client.NewClient(r.Code, r.Name)
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	return c
}

// UpdateClientRequest for updating clients.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// ApplyTo applies non-nil fields onto the existing client.
func (r *UpdateClientRequest) ApplyTo(c *client.Client) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.Active != nil {
		c.Active = *r.Active
	}
}

// --- Response DTOs ---

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Address      string `json:"address,omitempty"`
	Active       bool   `json:"active"`
	DeletionMark bool   `json:"deletionMark,omitempty"`
	Version      int    `json:"version"`
}

// FromClient creates a response from the domain client.
func FromClient(c *client.Client) *ClientResponse {
	return &ClientResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Active:       c.Active,
		DeletionMark: c.DeletionMark,
		Version:      c.Version,
	}
}
