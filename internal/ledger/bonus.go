package ledger

// BonusSplit is the computed payout plan for one support-fee payment.
type BonusSplit struct {
	// Reserve is excluded from the pool and routed to the reserve fund.
	Reserve int64

	// Pool is the distributable remainder of the fee.
	Pool int64

	// LevelShares[i] is the payout to the ancestor at level i+1 (index 0
	// = immediate parent). Length equals the length of the ancestor
	// chain, capped at the configured depth.
	LevelShares []int64

	// CompanyShare absorbs the shares of missing levels plus the
	// rounding remainder. Pool == sum(LevelShares) + CompanyShare.
	CompanyShare int64
}

// SplitBonus divides a support-fee payment across an ancestor chain of
// chainLen members, paying up to maxDepth levels. The pool (fee − reserve)
// is divided into maxDepth equal level shares; each present ancestor takes
// one, and the rest — missing levels and the integer-division remainder —
// becomes the company share.
func SplitBonus(fee, reserve int64, chainLen, maxDepth int) BonusSplit {
	pool := fee - reserve
	split := BonusSplit{Reserve: reserve, Pool: pool}
	if maxDepth <= 0 || pool <= 0 {
		split.CompanyShare = pool
		return split
	}

	perLevel := pool / int64(maxDepth)
	levels := chainLen
	if levels > maxDepth {
		levels = maxDepth
	}

	var distributed int64
	for i := 0; i < levels; i++ {
		split.LevelShares = append(split.LevelShares, perLevel)
		distributed += perLevel
	}
	split.CompanyShare = pool - distributed
	return split
}
