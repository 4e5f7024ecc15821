// Package ledger holds the pure arithmetic of the cooperative: contribution
// allocation, bonus and dividend splits, and dividend eligibility. Nothing
// here touches storage; every function is deterministic over its inputs.
//
// All amounts are int64 in the smallest currency unit. Splits are exact:
// the parts always sum back to the input, with rounding remainders absorbed
// into a documented side of each split.
package ledger

import (
	"github.com/adeyemio/coopledger/internal/models"
)

// Rule constants. MinimumCapital and MinimumMonths gate both withdrawals
// and dividend eligibility; MinimumThreshold gates dividend/bonus
// withdrawals.
const (
	MinimumCapital   int64 = 50_000
	MinimumMonths          = 3
	MinimumThreshold int64 = 1_000
)

// Allocation is the result of splitting a contribution across buckets.
type Allocation struct {
	Capital int64
	Savings int64
}

// Allocate splits an approved contribution according to the breakdown
// policy. Acting members always allocate everything to capital regardless
// of breakdown. For 80_20 the savings portion is amount/5 rounded down, so
// the rounding remainder stays in capital and Capital+Savings == amount
// exactly.
func Allocate(amount int64, breakdown models.BreakdownType, memberType models.MemberType) (Allocation, error) {
	if amount <= 0 {
		return Allocation{}, models.Validationf("amount", "must be positive, got %d", amount)
	}

	if memberType == models.MemberActing {
		return Allocation{Capital: amount}, nil
	}

	switch breakdown {
	case models.Breakdown8020:
		savings := amount / 5
		return Allocation{Capital: amount - savings, Savings: savings}, nil
	case models.Breakdown100Capital:
		return Allocation{Capital: amount}, nil
	default:
		return Allocation{}, models.Validationf("breakdown", "unknown breakdown type %q", breakdown)
	}
}

// EligibleForDividend is the single definition of dividend eligibility:
// capital at or above the minimum, at least the minimum months contributed,
// and a contributor member type. Recomputed after every balance mutation;
// never set independently.
func EligibleForDividend(capital int64, monthsContributed int, memberType models.MemberType) bool {
	return capital >= MinimumCapital &&
		monthsContributed >= MinimumMonths &&
		memberType == models.MemberContributor
}
