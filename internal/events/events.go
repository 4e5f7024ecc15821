// Package events defines the logical events the ledger core emits for an
// external notifier. Delivery is not the core's concern; the default sink
// just logs.
package events

import (
	"context"
	"log/slog"
)

// Event types emitted by the services.
const (
	ContributionApproved = "contribution.approved"
	WithdrawalRequested  = "withdrawal.requested"
	WithdrawalApproved   = "withdrawal.approved"
	WithdrawalCompleted  = "withdrawal.completed"
	WithdrawalRejected   = "withdrawal.rejected"
	BonusDistributed     = "bonus.distributed"
	DividendDistributed  = "dividend.distributed"
	MonthSettled         = "month.settled"
)

// Event is one logical notification.
type Event struct {
	// Type is one of the constants above.
	Type string

	// MemberID is the affected member, when the event targets one.
	MemberID string

	// RefID points at the triggering record (contribution, withdrawal,
	// distribution batch or settlement).
	RefID string

	// Amount is the monetary amount involved, in smallest units.
	Amount int64

	// Month is the calendar month involved, "YYYY-MM", when relevant.
	Month string
}

// Emitter receives events from the services. Implementations must be safe
// for concurrent use and must not block request handling.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// LogEmitter is the default sink: it writes events to the structured log
// for an external notifier to tail.
type LogEmitter struct{}

// Emit logs the event.
func (LogEmitter) Emit(ctx context.Context, e Event) {
	slog.InfoContext(ctx, "event emitted",
		"type", e.Type,
		"member_id", e.MemberID,
		"ref_id", e.RefID,
		"amount", e.Amount,
		"month", e.Month,
	)
}
