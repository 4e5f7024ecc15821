package models

// BonusShareStatus is the lifecycle of one bonus share row. Shares start
// pending and become approved when their month is settled.
type BonusShareStatus string

const (
	BonusSharePending  BonusShareStatus = "pending"
	BonusShareApproved BonusShareStatus = "approved"
)

// SupportFeePayment is a recurring fixed-fee payment by a member. Each
// approved payment triggers exactly one bonus distribution.
type SupportFeePayment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// MemberID is the paying member.
	MemberID string

	// Amount is the fixed fee, in smallest units.
	Amount int64

	// Month is the calendar month the fee covers, "YYYY-MM".
	Month string

	// ReceiptRef is an opaque receipt reference from object storage.
	ReceiptRef string

	// Approved is set by admin action; approval triggers the bonus run.
	Approved bool

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

// BonusDistribution is the batch header for one support-fee payout.
// Exactly one exists per source payment; creation is idempotent on
// SourcePaymentID.
type BonusDistribution struct {
	// ID is the unique identifier for the batch (UUID format).
	ID string

	// SourcePaymentID is the approved support-fee payment that triggered
	// this batch. Unique across all batches.
	SourcePaymentID string

	// Amount is the full fee amount of the source payment.
	Amount int64

	// Reserve is the portion routed to the cooperative reserve fund,
	// excluded from the distributable pool.
	Reserve int64

	// Pool is Amount − Reserve, split across the ancestor chain.
	Pool int64

	// ParticipantCount is how many ancestor members received a share.
	ParticipantCount int

	// Month is the calendar month of the source payment, "YYYY-MM".
	Month string

	// CreatedAt is the Unix timestamp when the batch was written.
	CreatedAt int64

	// Shares are the per-member rows, including the company share.
	Shares []BonusShare
}

// BonusShare is one payout row inside a bonus distribution. The sum of
// all rows in a batch equals the batch pool exactly.
type BonusShare struct {
	// ID is the unique identifier for the share (UUID format).
	ID string

	// DistributionID is the owning batch.
	DistributionID string

	// MemberID is the recipient. For the company share this is the
	// company root.
	MemberID string

	// Amount is the share, in smallest units.
	Amount int64

	// Level is the recipient's distance from the paying member (1 =
	// immediate parent). Zero for the company share.
	Level int

	// IsCompanyShare marks the residual credited to the company.
	IsCompanyShare bool

	// Status is pending until the month is settled.
	Status BonusShareStatus
}

// DividendDistribution is the batch header for one admin-triggered
// pro-rata profit run. Deletable only as a whole batch.
type DividendDistribution struct {
	// ID is the unique identifier for the batch (UUID format).
	ID string

	// TotalProfit is the admin-supplied profit being distributed.
	TotalProfit int64

	// TotalCapitalPool is the summed capital of the eligible snapshot.
	TotalCapitalPool int64

	// EligibleCount is how many members were in the snapshot.
	EligibleCount int

	// CreatedAt is the Unix timestamp when the batch was written.
	CreatedAt int64

	// Dividends are the per-member rows.
	Dividends []Dividend
}

// Dividend is one member's row in a dividend distribution. The sum of all
// Amounts in a batch equals TotalProfit exactly.
type Dividend struct {
	// ID is the unique identifier for the row (UUID format).
	ID string

	// DistributionID is the owning batch.
	DistributionID string

	// MemberID is the recipient.
	MemberID string

	// Amount is the member's share of the profit, in smallest units.
	Amount int64

	// PercentageBps is the member's share of the capital pool in basis
	// points (capital / pool × 10,000).
	PercentageBps int64

	// CapitalSnapshot is the member's capital at distribution time.
	CapitalSnapshot int64
}
