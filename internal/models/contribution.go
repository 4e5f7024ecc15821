package models

// BreakdownType selects how an approved contribution splits across buckets.
type BreakdownType string

const (
	// Breakdown8020 puts 80% into capital and 20% into savings. The
	// integer split keeps any rounding remainder in the capital portion.
	Breakdown8020 BreakdownType = "80_20"

	// Breakdown100Capital puts the full amount into capital.
	Breakdown100Capital BreakdownType = "100_capital"
)

// ContributionStatus is the lifecycle state of a contribution.
type ContributionStatus string

const (
	ContributionPending  ContributionStatus = "pending"
	ContributionApproved ContributionStatus = "approved"
)

// Contribution is a member payment awaiting or past admin approval.
// Created by member action; consumed exactly once by the allocator on
// approval.
type Contribution struct {
	// ID is the unique identifier for the contribution (UUID format).
	ID string

	// MemberID is the contributing member.
	MemberID string

	// Amount is the full payment, in smallest units.
	Amount int64

	// CapitalAmount and SavingsAmount are the allocated portions, filled
	// in at approval time. CapitalAmount + SavingsAmount == Amount.
	CapitalAmount int64
	SavingsAmount int64

	// Breakdown selects the allocation policy.
	Breakdown BreakdownType

	// Month is the calendar month the contribution belongs to, "YYYY-MM".
	Month string

	// ReceiptRef is an opaque receipt reference supplied by object
	// storage; the ledger never inspects it.
	ReceiptRef string

	// Status is pending until an admin approves.
	Status ContributionStatus

	// Settled is set when the contribution's month is settled.
	Settled bool

	// CreatedAt is the Unix timestamp when the contribution was recorded.
	CreatedAt int64
}
