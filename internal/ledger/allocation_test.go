package ledger

import (
	"testing"

	"github.com/adeyemio/coopledger/internal/models"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		breakdown  models.BreakdownType
		memberType models.MemberType
		wantErr    bool
		validate   func(t *testing.T, alloc Allocation)
	}{
		{
			name:       "80_20 divisible amount",
			amount:     100_000,
			breakdown:  models.Breakdown8020,
			memberType: models.MemberContributor,
			validate: func(t *testing.T, alloc Allocation) {
				if alloc.Capital != 80_000 || alloc.Savings != 20_000 {
					t.Errorf("alloc = %+v, want capital 80000, savings 20000", alloc)
				}
				if alloc.Capital != 4*alloc.Savings {
					t.Errorf("capital %d != 4 × savings %d", alloc.Capital, alloc.Savings)
				}
			},
		},
		{
			name:       "80_20 remainder goes to capital",
			amount:     101,
			breakdown:  models.Breakdown8020,
			memberType: models.MemberContributor,
			validate: func(t *testing.T, alloc Allocation) {
				if alloc.Capital+alloc.Savings != 101 {
					t.Errorf("split loses units: %d + %d != 101", alloc.Capital, alloc.Savings)
				}
				if alloc.Savings != 20 {
					t.Errorf("savings = %d, want 20 (floor of 101/5)", alloc.Savings)
				}
				if alloc.Capital != 81 {
					t.Errorf("capital = %d, want 81 (remainder absorbed)", alloc.Capital)
				}
			},
		},
		{
			name:       "80_20 tiny amount",
			amount:     3,
			breakdown:  models.Breakdown8020,
			memberType: models.MemberContributor,
			validate: func(t *testing.T, alloc Allocation) {
				if alloc.Capital != 3 || alloc.Savings != 0 {
					t.Errorf("alloc = %+v, want all 3 units in capital", alloc)
				}
			},
		},
		{
			name:       "100_capital",
			amount:     50_000,
			breakdown:  models.Breakdown100Capital,
			memberType: models.MemberContributor,
			validate: func(t *testing.T, alloc Allocation) {
				if alloc.Capital != 50_000 || alloc.Savings != 0 {
					t.Errorf("alloc = %+v, want all capital", alloc)
				}
			},
		},
		{
			name:       "acting member ignores breakdown",
			amount:     10_000,
			breakdown:  models.Breakdown8020,
			memberType: models.MemberActing,
			validate: func(t *testing.T, alloc Allocation) {
				if alloc.Capital != 10_000 || alloc.Savings != 0 {
					t.Errorf("alloc = %+v, want all capital for acting member", alloc)
				}
			},
		},
		{
			name:       "zero amount rejected",
			amount:     0,
			breakdown:  models.Breakdown8020,
			memberType: models.MemberContributor,
			wantErr:    true,
		},
		{
			name:       "negative amount rejected",
			amount:     -5,
			breakdown:  models.Breakdown100Capital,
			memberType: models.MemberContributor,
			wantErr:    true,
		},
		{
			name:       "unknown breakdown rejected",
			amount:     1_000,
			breakdown:  "50_50",
			memberType: models.MemberContributor,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc, err := Allocate(tt.amount, tt.breakdown, tt.memberType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Allocate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !models.IsValidation(err) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if tt.validate != nil {
				tt.validate(t, alloc)
			}
		})
	}
}

func TestAllocate8020ExactSum(t *testing.T) {
	// The split must never create or lose a unit, whatever the amount.
	for _, amount := range []int64{1, 2, 4, 5, 99, 100, 101, 12_345, 999_999} {
		alloc, err := Allocate(amount, models.Breakdown8020, models.MemberContributor)
		if err != nil {
			t.Fatalf("Allocate(%d) failed: %v", amount, err)
		}
		if alloc.Capital+alloc.Savings != amount {
			t.Errorf("amount %d: capital %d + savings %d != amount",
				amount, alloc.Capital, alloc.Savings)
		}
	}
}

func TestEligibleForDividend(t *testing.T) {
	tests := []struct {
		name       string
		capital    int64
		months     int
		memberType models.MemberType
		want       bool
	}{
		{"capital just below floor", 49_999, 5, models.MemberContributor, false},
		{"inclusive boundary both dimensions", 50_000, 3, models.MemberContributor, true},
		{"months below minimum", 200_000, 2, models.MemberContributor, false},
		{"acting member never eligible", 200_000, 12, models.MemberActing, false},
		{"well above both thresholds", 150_000, 8, models.MemberContributor, true},
		{"zero everything", 0, 0, models.MemberContributor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EligibleForDividend(tt.capital, tt.months, tt.memberType)
			if got != tt.want {
				t.Errorf("EligibleForDividend(%d, %d, %s) = %v, want %v",
					tt.capital, tt.months, tt.memberType, got, tt.want)
			}
		})
	}
}
