package handlers

import (
	"pneutrack/internal/domain/catalogs/prestation"
	"pneutrack/internal/infrastructure/http/v1/dto"
)

// PrestationHandler handles HTTP requests for the Prestation catalog.
type PrestationHandler struct {
	*CatalogHandler[*prestation.Prestation, dto.CreatePrestationRequest, dto.UpdatePrestationRequest]
}

// NewPrestationHandler creates a new prestation handler.
func NewPrestationHandler(base *BaseHandler, service *prestation.Service) *PrestationHandler {
	cfg := CatalogHandlerConfig[*prestation.Prestation, dto.CreatePrestationRequest, dto.UpdatePrestationRequest]{
		Service:    service.CatalogService,
		EntityName: "prestation",
		MapCreateDTO: func(req dto.CreatePrestationRequest) *prestation.Prestation {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdatePrestationRequest, existing *prestation.Prestation) *prestation.Prestation {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(p *prestation.Prestation) any {
			return dto.FromPrestation(p)
		},
	}

	return &PrestationHandler{
		CatalogHandler: NewCatalogHandler(base, cfg),
	}
}
