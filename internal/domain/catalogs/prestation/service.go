package prestation

import (
	"context"
	"fmt"
	"time"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/tx"
	"pneutrack/internal/domain"
	"pneutrack/pkg/numerator"
)

// Service provides business logic for the Prestation catalog.
type Service struct {
	*domain.CatalogService[*Prestation]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Prestation service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Prestation]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "prestation",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, p *Prestation) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PRE"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
		return nil
	}

	if exists, _ := s.repo.ExistsByCode(ctx, p.Code); exists {
		return apperror.NewDuplicate("prestation", "code", p.Code)
	}
	return nil
}
