package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/timberline-erp/timberline/internal/masterdata/ledgers"
)

// Service builds the accounting reports. Concurrent requests for the same
// report collapse onto a single build via singleflight.
type Service struct {
	repo  Repository
	group singleflight.Group
}

// NewService constructs the report service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) build(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.Val, res.Err
	}
}

// Statement returns the transaction history with running balances for a ledger.
func (s *Service) Statement(ctx context.Context, companyID, ledgerID int64, from, to time.Time) (Statement, error) {
	key := fmt.Sprintf("stmt:%d:%d:%s:%s", companyID, ledgerID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	result, err := s.build(ctx, key, func(ctx context.Context) (interface{}, error) {
		name, opening, err := s.repo.StatementOpening(ctx, companyID, ledgerID, from)
		if err != nil {
			return nil, err
		}
		entries, err := s.repo.StatementEntries(ctx, companyID, ledgerID, from, to)
		if err != nil {
			return nil, err
		}
		return BuildStatement(ledgerID, name, opening, entries), nil
	})
	if err != nil {
		return Statement{}, err
	}
	return result.(Statement), nil
}

// TrialBalance returns the grouped trial balance over the period.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, from, to time.Time) (TrialBalance, error) {
	key := fmt.Sprintf("tb:%d:%s:%s", companyID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	result, err := s.build(ctx, key, func(ctx context.Context) (interface{}, error) {
		activities, err := s.repo.LedgerActivities(ctx, companyID, from, to)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(activities), nil
	})
	if err != nil {
		return TrialBalance{}, err
	}
	return result.(TrialBalance), nil
}

// ProfitAndLoss returns the trading and P&L figures over the period.
// Opening stock is recomputed on read from stock-type ledgers rather than
// carried as a stored placeholder.
func (s *Service) ProfitAndLoss(ctx context.Context, companyID int64, from, to time.Time) (ProfitAndLoss, error) {
	key := fmt.Sprintf("pl:%d:%s:%s", companyID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	result, err := s.build(ctx, key, func(ctx context.Context) (interface{}, error) {
		activities, err := s.repo.LedgerActivities(ctx, companyID, from, to)
		if err != nil {
			return nil, err
		}
		return BuildProfitAndLoss(activities, openingStock(activities)), nil
	})
	if err != nil {
		return ProfitAndLoss{}, err
	}
	return result.(ProfitAndLoss), nil
}

// BalanceSheet returns assets and liabilities as of a date, folding the
// period net profit into the liabilities side.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, from, asOf time.Time) (BalanceSheet, error) {
	key := fmt.Sprintf("bs:%d:%s:%s", companyID, from.Format("2006-01-02"), asOf.Format("2006-01-02"))
	result, err := s.build(ctx, key, func(ctx context.Context) (interface{}, error) {
		activities, err := s.repo.LedgerActivities(ctx, companyID, from, asOf)
		if err != nil {
			return nil, err
		}
		pl := BuildProfitAndLoss(activities, openingStock(activities))
		return BuildBalanceSheet(activities, pl.NetProfit), nil
	})
	if err != nil {
		return BalanceSheet{}, err
	}
	return result.(BalanceSheet), nil
}

func openingStock(activities []LedgerActivity) float64 {
	var total float64
	for _, act := range activities {
		if act.Type == ledgers.TypeStock {
			total += act.Opening
		}
	}
	return total
}
