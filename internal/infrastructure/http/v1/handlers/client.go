package handlers

import (
	"pneutrack/internal/domain/catalogs/client"
	"pneutrack/internal/infrastructure/http/v1/dto"
)

// ClientHandler handles HTTP requests for the Client catalog.
type ClientHandler struct {
	*CatalogHandler[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]
}

// NewClientHandler creates a new client handler.
func NewClientHandler(base *BaseHandler, service *client.Service) *ClientHandler {
	cfg := CatalogHandlerConfig[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]{
		Service:    service.CatalogService,
		EntityName: "client",
		MapCreateDTO: func(req dto.CreateClientRequest) *client.Client {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateClientRequest, existing *client.Client) *client.Client {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *client.Client) any {
			return dto.FromClient(c)
		},
	}

	return &ClientHandler{
		CatalogHandler: NewCatalogHandler(base, cfg),
	}
}
