package ledgers

import (
	"context"
	"errors"
)

// Service coordinates ledger master operations.
type Service struct {
	repo Repository
}

// NewService constructs the ledgers service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Ledger, int, error) {
	if filters.CompanyID <= 0 {
		return nil, 0, errors.New("company is required")
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Ledger, error) {
	if id <= 0 {
		return Ledger{}, errors.New("invalid ledger ID")
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, ledger Ledger) (Ledger, error) {
	if err := s.validate(ledger); err != nil {
		return Ledger{}, err
	}
	return s.repo.Create(ctx, ledger)
}

func (s *Service) Update(ctx context.Context, ledger Ledger) error {
	if ledger.ID <= 0 {
		return errors.New("invalid ledger ID")
	}
	if err := s.validate(ledger); err != nil {
		return err
	}
	return s.repo.Update(ctx, ledger)
}
