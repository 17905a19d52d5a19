package notify

import "time"

// Outbox row statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Notification kinds.
const (
	KindVoucher  = "voucher"
	KindDispatch = "dispatch"
)

// Notification is an outbox row written in the same transaction as the
// record it announces, and delivered asynchronously.
type Notification struct {
	ID        int64      `json:"id"`
	Kind      string     `json:"kind"`
	RefID     int64      `json:"ref_id"`
	Recipient string     `json:"recipient"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}
