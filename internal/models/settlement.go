package models

// SettlementStatus tracks the single, irreversible transition of a
// monthly settlement.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSettled SettlementStatus = "settled"
)

// Settlement is the commit boundary for one calendar month. Created
// lazily when the month is settled; once settled, every mutation
// addressed at that month is refused.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Month is the settled calendar month, "YYYY-MM".
	Month string

	// TotalContributions is the summed amount of the month's approved
	// contributions.
	TotalContributions int64

	// TotalBonuses is the summed amount of the month's bonus shares.
	TotalBonuses int64

	// TotalWithdrawals is the summed amount of withdrawals completed by
	// this settlement.
	TotalWithdrawals int64

	// Status transitions once, pending → settled.
	Status SettlementStatus

	// SettledAt is the Unix timestamp of the transition.
	SettledAt int64
}
