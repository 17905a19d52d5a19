// Package shared holds sentinel errors common to the accounting packages.
package shared

import "errors"

var (
	// ErrUnbalanced indicates debit and credit totals differ beyond tolerance.
	ErrUnbalanced = errors.New("accounting: voucher not balanced")
	// ErrTooFewEntries indicates a voucher with fewer than two entries.
	ErrTooFewEntries = errors.New("accounting: voucher requires at least two entries")
	// ErrVoucherNotFound indicates a missing voucher.
	ErrVoucherNotFound = errors.New("accounting: voucher not found")
	// ErrLedgerNotFound indicates a missing ledger reference.
	ErrLedgerNotFound = errors.New("accounting: ledger not found")
	// ErrCompanyMismatch indicates an entry ledger outside the voucher company.
	ErrCompanyMismatch = errors.New("accounting: ledger belongs to another company")
	// ErrDuplicateNumber indicates a voucher number collision.
	ErrDuplicateNumber = errors.New("accounting: duplicate voucher number")
	// ErrInvalidVoucherType indicates an unknown voucher type.
	ErrInvalidVoucherType = errors.New("accounting: invalid voucher type")
)
