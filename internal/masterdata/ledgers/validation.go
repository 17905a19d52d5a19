package ledgers

import (
	"errors"
	"strings"
)

func (s *Service) validate(l Ledger) error {
	if l.CompanyID <= 0 {
		return errors.New("company is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("ledger name is required")
	}
	if !l.Type.IsValid() {
		return errors.New("unknown account type: " + string(l.Type))
	}
	return nil
}
