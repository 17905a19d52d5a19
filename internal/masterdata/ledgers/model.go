package ledgers

import (
	"time"
)

// AccountType enumerates the fixed chart-of-accounts taxonomy.
type AccountType string

const (
	TypeCapital         AccountType = "capital"
	TypeReserves        AccountType = "reserves"
	TypeSecuredLoans    AccountType = "secured_loans"
	TypeUnsecuredLoans  AccountType = "unsecured_loans"
	TypeDutiesTaxes     AccountType = "duties_taxes"
	TypeSundryCreditors AccountType = "sundry_creditors"
	TypeSundryDebtors   AccountType = "sundry_debtors"
	TypeFixedAssets     AccountType = "fixed_assets"
	TypeCurrentAssets   AccountType = "current_assets"
	TypeCash            AccountType = "cash"
	TypeBank            AccountType = "bank"
	TypeStock           AccountType = "stock"
	TypeSalesAccounts   AccountType = "sales_accounts"
	TypePurchase        AccountType = "purchase_accounts"
	TypeDirectIncome    AccountType = "direct_income"
	TypeIndirectIncome  AccountType = "indirect_income"
	TypeDirectExpenses  AccountType = "direct_expenses"
	TypeIndirectExpense AccountType = "indirect_expenses"
	TypeBranchDivision  AccountType = "branch_division"
	TypeSuspense        AccountType = "suspense"
)

// AllAccountTypes lists every member of the taxonomy.
var AllAccountTypes = []AccountType{
	TypeCapital, TypeReserves, TypeSecuredLoans, TypeUnsecuredLoans,
	TypeDutiesTaxes, TypeSundryCreditors, TypeSundryDebtors,
	TypeFixedAssets, TypeCurrentAssets, TypeCash, TypeBank, TypeStock,
	TypeSalesAccounts, TypePurchase, TypeDirectIncome, TypeIndirectIncome,
	TypeDirectExpenses, TypeIndirectExpense, TypeBranchDivision, TypeSuspense,
}

// IsValid reports whether the type belongs to the taxonomy.
func (t AccountType) IsValid() bool {
	for _, known := range AllAccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsIncome reports whether entries on this ledger accumulate credit minus debit.
func (t AccountType) IsIncome() bool {
	switch t {
	case TypeSalesAccounts, TypeDirectIncome, TypeIndirectIncome:
		return true
	default:
		return false
	}
}

// IsExpense reports whether entries on this ledger accumulate debit minus credit.
func (t AccountType) IsExpense() bool {
	switch t {
	case TypePurchase, TypeDirectExpenses, TypeIndirectExpense:
		return true
	default:
		return false
	}
}

// IsAsset reports whether the ledger sits on the assets side of the balance sheet.
func (t AccountType) IsAsset() bool {
	switch t {
	case TypeFixedAssets, TypeCurrentAssets, TypeCash, TypeBank, TypeStock, TypeSundryDebtors:
		return true
	default:
		return false
	}
}

// IsLiability reports whether the ledger sits on the liabilities side.
func (t AccountType) IsLiability() bool {
	switch t {
	case TypeCapital, TypeReserves, TypeSecuredLoans, TypeUnsecuredLoans,
		TypeDutiesTaxes, TypeSundryCreditors, TypeBranchDivision, TypeSuspense:
		return true
	default:
		return false
	}
}

// Ledger is a named account in the chart of accounts.
//
// CurrentBalance is an accumulator, not a cache: it equals OpeningBalance
// plus the net of every posted entry, and is only mutated inside the same
// transaction that writes those entries.
type Ledger struct {
	ID             int64       `json:"id"`
	CompanyID      int64       `json:"company_id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	OpeningBalance float64     `json:"opening_balance"`
	CurrentBalance float64     `json:"current_balance"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
