package gstin

import (
	"errors"
	"regexp"
	"time"
)

// Source identifies where a lookup result came from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceAPI      Source = "api"
	SourceDummy    Source = "dummy"
)

// ErrInvalidGSTIN indicates a malformed registration number.
var ErrInvalidGSTIN = errors.New("gstin: invalid format")

// gstinPattern is the standard 15-character layout: 2-digit state code,
// 10-character PAN, entity code, the literal Z, and a check character.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// Validate checks the GSTIN format without contacting any backend.
func Validate(gstin string) error {
	if !gstinPattern.MatchString(gstin) {
		return ErrInvalidGSTIN
	}
	return nil
}

// StateCode returns the 2-digit state prefix.
func StateCode(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}

// Record is the taxpayer detail attached to a GSTIN.
type Record struct {
	GSTIN     string    `json:"gstin"`
	LegalName string    `json:"legal_name"`
	TradeName string    `json:"trade_name,omitempty"`
	State     string    `json:"state"`
	StateCode string    `json:"state_code"`
	Address   string    `json:"address,omitempty"`
	Status    string    `json:"status"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Result is the lookup response envelope.
type Result struct {
	Success bool   `json:"success"`
	Source  Source `json:"source"`
	Data    Record `json:"data"`
}
