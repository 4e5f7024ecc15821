package models

// WithdrawalStatus is the state machine of a withdrawal request:
// pending → approved → completed, or pending → rejected. Completed and
// rejected are terminal.
type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalApproved  WithdrawalStatus = "approved"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

// BankDetails is the payout destination attached to a withdrawal request.
// Opaque to the ledger beyond presence checks.
type BankDetails struct {
	BankName      string
	AccountName   string
	AccountNumber string
}

// WithdrawalRequest reserves part of a member's bucket for payout.
// Requests in pending or approved status count against the member's
// available balance; no bucket is decremented until completion.
type WithdrawalRequest struct {
	// ID is the unique identifier for the request (UUID format).
	ID string

	// MemberID is the requesting member.
	MemberID string

	// Bucket names which balance bucket the withdrawal draws from.
	Bucket Bucket

	// Amount is the requested payout, in smallest units.
	Amount int64

	// Bank is the payout destination.
	Bank BankDetails

	// Status tracks the request through its state machine.
	Status WithdrawalStatus

	// Month is the calendar month the request was made in, "YYYY-MM".
	Month string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}
