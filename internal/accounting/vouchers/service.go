package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timberline-erp/timberline/internal/accounting/shared"
	internalShared "github.com/timberline-erp/timberline/internal/shared"
)

// NotificationKindVoucher tags outbox rows produced by voucher posting.
const NotificationKindVoucher = "voucher"

// AuditPort records posting and deletion events.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// NotifyQueue hands a committed outbox row to the background dispatcher.
// Enqueue failures must never affect the posting outcome.
type NotifyQueue interface {
	Enqueue(ctx context.Context, notificationID int64) error
}

// Service coordinates voucher posting and deletion.
type Service struct {
	repo  Repository
	audit AuditPort
	queue NotifyQueue
	now   func() time.Time
}

// NewService constructs the voucher service.
func NewService(repo Repository, audit AuditPort, queue NotifyQueue) *Service {
	return &Service{repo: repo, audit: audit, queue: queue, now: time.Now}
}

// WithNow overrides the clock, used in tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Voucher, int, error) {
	if filters.CompanyID <= 0 {
		return nil, 0, errors.New("accounting: company required")
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Voucher, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Post validates and persists a voucher atomically: header, entries, ledger
// balance adjustments, and the notification intent all share one transaction.
func (s *Service) Post(ctx context.Context, input PostingInput) (Voucher, error) {
	if input.CompanyID <= 0 {
		return Voucher{}, errors.New("accounting: company required")
	}
	if err := input.Validate(); err != nil {
		return Voucher{}, err
	}

	var voucher Voucher
	var notificationID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, deltas := input.LedgerDeltas()
		for _, ledgerID := range order {
			ref, err := tx.GetLedgerForUpdate(ctx, ledgerID)
			if err != nil {
				return err
			}
			if ref.CompanyID != input.CompanyID {
				return shared.ErrCompanyMismatch
			}
		}

		seq, err := tx.NextSequence(ctx, input.CompanyID, input.Type)
		if err != nil {
			return err
		}

		inserted, err := tx.InsertVoucher(ctx, Voucher{
			CompanyID:     input.CompanyID,
			Number:        fmt.Sprintf("%s-%04d", input.Type.NumberPrefix(), seq),
			Type:          input.Type,
			Date:          input.Date,
			PartyLedgerID: input.PartyLedgerID,
			TotalAmount:   input.TotalDebit(),
			Narration:     input.Narration,
			PostedBy:      input.PostedBy,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertEntries(ctx, inserted.ID, input.Entries); err != nil {
			return err
		}
		for _, ledgerID := range order {
			if err := tx.AdjustLedgerBalance(ctx, ledgerID, deltas[ledgerID]); err != nil {
				return err
			}
		}
		if input.NotifyEmail != "" {
			message := fmt.Sprintf("Voucher %s posted for %.2f", inserted.Number, inserted.TotalAmount)
			notificationID, err = tx.InsertNotification(ctx, NotificationKindVoucher, inserted.ID, input.NotifyEmail, message)
			if err != nil {
				return err
			}
		}
		voucher = inserted
		voucher.Entries = toEntries(inserted.ID, input.Entries)
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}

	// Dispatch is best-effort: the voucher stands even if the queue is down.
	if notificationID != 0 && s.queue != nil {
		_ = s.queue.Enqueue(ctx, notificationID)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  input.PostedBy,
			Action:   "voucher.post",
			Entity:   "voucher",
			EntityID: fmt.Sprintf("%d", voucher.ID),
			Meta: map[string]any{
				"number": voucher.Number,
				"type":   string(voucher.Type),
				"amount": voucher.TotalAmount,
			},
			At: s.now(),
		})
	}
	return voucher, nil
}

// Delete removes a voucher and reverses its effect on every referenced
// ledger's running balance inside one transaction.
func (s *Service) Delete(ctx context.Context, companyID, voucherID, actorID int64) error {
	if voucherID <= 0 {
		return errors.New("accounting: voucher id required")
	}
	var number string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		voucher, err := tx.GetVoucherWithEntries(ctx, companyID, voucherID)
		if err != nil {
			return err
		}
		number = voucher.Number
		deltas := make(map[int64]float64, len(voucher.Entries))
		order := make([]int64, 0, len(voucher.Entries))
		for _, entry := range voucher.Entries {
			if _, seen := deltas[entry.LedgerID]; !seen {
				order = append(order, entry.LedgerID)
			}
			deltas[entry.LedgerID] += entry.Debit - entry.Credit
		}
		for _, ledgerID := range order {
			if err := tx.AdjustLedgerBalance(ctx, ledgerID, -deltas[ledgerID]); err != nil {
				return err
			}
		}
		return tx.DeleteVoucher(ctx, voucherID)
	})
	if err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  actorID,
			Action:   "voucher.delete",
			Entity:   "voucher",
			EntityID: fmt.Sprintf("%d", voucherID),
			Meta:     map[string]any{"number": number},
			At:       s.now(),
		})
	}
	return nil
}

func toEntries(voucherID int64, inputs []EntryInput) []Entry {
	out := make([]Entry, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, Entry{
			VoucherID: voucherID,
			LedgerID:  in.LedgerID,
			Debit:     in.Debit,
			Credit:    in.Credit,
			Narration: in.Narration,
		})
	}
	return out
}
