package models

// Bucket identifies one of the four balance buckets a member holds.
type Bucket string

const (
	BucketCapital  Bucket = "capital"
	BucketSavings  Bucket = "savings"
	BucketDividend Bucket = "dividend"
	BucketBonus    Bucket = "bonus"
)

// Valid reports whether b names a known bucket.
func (b Bucket) Valid() bool {
	switch b {
	case BucketCapital, BucketSavings, BucketDividend, BucketBonus:
		return true
	}
	return false
}

// Balance is the authoritative per-member balance record. One row per
// member; monetary fields are never negative. Rows are never deleted.
type Balance struct {
	// MemberID identifies the owning member.
	MemberID string

	// Capital is the locked contribution portion, in smallest units.
	Capital int64

	// Savings is the emergency-access contribution portion.
	Savings int64

	// DividendEarned is the accumulated pro-rata profit share.
	DividendEarned int64

	// BonusEarned is the accumulated referral commission.
	BonusEarned int64

	// MonthsContributed counts distinct calendar months with at least one
	// approved contribution. Incremented at most once per month.
	MonthsContributed int

	// EligibleForDividend is derived state: capital >= 50,000 and
	// months >= 3 and the member is a contributor. Recomputed after every
	// balance mutation, never set independently.
	EligibleForDividend bool

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64
}

// Bucket returns the raw balance of the named bucket.
func (b *Balance) Bucket(bucket Bucket) int64 {
	switch bucket {
	case BucketCapital:
		return b.Capital
	case BucketSavings:
		return b.Savings
	case BucketDividend:
		return b.DividendEarned
	case BucketBonus:
		return b.BonusEarned
	}
	return 0
}
