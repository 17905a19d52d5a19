package machines

import (
	"context"
	"errors"
	"strings"
)

// Service coordinates machine master operations.
type Service struct {
	repo Repository
}

// NewService constructs the machines service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, companyID int64) ([]Machine, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Machine, error) {
	if id <= 0 {
		return Machine{}, errors.New("invalid machine ID")
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, machine Machine) (Machine, error) {
	if err := validate(machine); err != nil {
		return Machine{}, err
	}
	return s.repo.Create(ctx, machine)
}

func (s *Service) Update(ctx context.Context, machine Machine) error {
	if machine.ID <= 0 {
		return errors.New("invalid machine ID")
	}
	if err := validate(machine); err != nil {
		return err
	}
	return s.repo.Update(ctx, machine)
}

func validate(m Machine) error {
	if m.CompanyID <= 0 {
		return errors.New("company is required")
	}
	if strings.TrimSpace(m.Code) == "" {
		return errors.New("machine code is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("machine name is required")
	}
	return nil
}
