package ledger

import (
	"math/big"

	"github.com/adeyemio/coopledger/internal/models"
)

// DividendShare is one member's computed slice of a profit run.
type DividendShare struct {
	MemberID        string
	Amount          int64
	PercentageBps   int64
	CapitalSnapshot int64
}

// EligibleCapital is the input snapshot for a dividend run: a member and
// their capital at snapshot time.
type EligibleCapital struct {
	MemberID string
	Capital  int64
}

// SplitDividend computes pro-rata profit shares over the eligible
// snapshot: share_i = capital_i × profit / Σcapital. Intermediate products
// go through big.Int so large pools cannot overflow. The rounding
// remainder is added to the largest share so the shares sum to profit
// exactly. Percentages are reported in basis points.
//
// Returns ErrNoEligibleMembers for an empty snapshot.
func SplitDividend(profit int64, snapshot []EligibleCapital) ([]DividendShare, int64, error) {
	if profit <= 0 {
		return nil, 0, models.Validationf("profit", "must be positive, got %d", profit)
	}
	if len(snapshot) == 0 {
		return nil, 0, models.ErrNoEligibleMembers
	}

	var pool int64
	for _, ec := range snapshot {
		pool += ec.Capital
	}
	if pool <= 0 {
		return nil, 0, models.ErrNoEligibleMembers
	}

	bigProfit := big.NewInt(profit)
	bigPool := big.NewInt(pool)

	shares := make([]DividendShare, len(snapshot))
	var distributed int64
	largest := 0
	for i, ec := range snapshot {
		amount := new(big.Int).Mul(big.NewInt(ec.Capital), bigProfit)
		amount.Quo(amount, bigPool)

		bps := new(big.Int).Mul(big.NewInt(ec.Capital), big.NewInt(10_000))
		bps.Quo(bps, bigPool)

		shares[i] = DividendShare{
			MemberID:        ec.MemberID,
			Amount:          amount.Int64(),
			PercentageBps:   bps.Int64(),
			CapitalSnapshot: ec.Capital,
		}
		distributed += shares[i].Amount
		if shares[i].Amount > shares[largest].Amount {
			largest = i
		}
	}

	// Integer division floors every share, so the remainder is
	// non-negative. The largest share absorbs it.
	shares[largest].Amount += profit - distributed

	return shares, pool, nil
}
