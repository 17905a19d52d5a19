package companies

import (
	"errors"
	"strings"
)

func (s *Service) validate(c Company) error {
	if strings.TrimSpace(c.Code) == "" {
		return errors.New("company code is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("company name is required")
	}
	if c.GSTIN != "" && len(c.GSTIN) != 15 {
		return errors.New("gstin must be 15 characters")
	}
	return nil
}
