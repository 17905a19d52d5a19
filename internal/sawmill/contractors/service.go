package contractors

import (
	"context"
	"errors"
	"strings"
)

// Service coordinates contractor master operations.
type Service struct {
	repo Repository
}

// NewService constructs the contractor service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries a new contractor registration.
type CreateInput struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	OpeningBalance float64 `json:"opening_balance"`
}

func (s *Service) List(ctx context.Context, companyID int64) ([]Contractor, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Contractor, error) {
	if id <= 0 {
		return Contractor{}, errors.New("invalid contractor ID")
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, companyID int64, in CreateInput) (Contractor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Contractor{}, errors.New("contractor name is required")
	}
	contractor := Contractor{
		CompanyID: companyID,
		Name:      name,
		Phone:     strings.TrimSpace(in.Phone),
		Active:    true,
	}
	return s.repo.CreateWithLedger(ctx, contractor, in.OpeningBalance)
}

func (s *Service) Update(ctx context.Context, contractor Contractor) error {
	if contractor.ID <= 0 {
		return errors.New("invalid contractor ID")
	}
	if strings.TrimSpace(contractor.Name) == "" {
		return errors.New("contractor name is required")
	}
	return s.repo.Update(ctx, contractor)
}
