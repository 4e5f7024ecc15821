package ledger

import (
	"errors"
	"testing"

	"github.com/adeyemio/coopledger/internal/models"
)

func TestSplitDividend(t *testing.T) {
	tests := []struct {
		name     string
		profit   int64
		snapshot []EligibleCapital
		wantErr  error
		validate func(t *testing.T, shares []DividendShare, pool int64)
	}{
		{
			name:   "two members pro-rata",
			profit: 100_000,
			snapshot: []EligibleCapital{
				{MemberID: "a", Capital: 50_000},
				{MemberID: "b", Capital: 150_000},
			},
			validate: func(t *testing.T, shares []DividendShare, pool int64) {
				if pool != 200_000 {
					t.Errorf("pool = %d, want 200000", pool)
				}
				if shares[0].Amount != 25_000 {
					t.Errorf("share a = %d, want 25000", shares[0].Amount)
				}
				if shares[1].Amount != 75_000 {
					t.Errorf("share b = %d, want 75000", shares[1].Amount)
				}
				if shares[0].PercentageBps != 2_500 || shares[1].PercentageBps != 7_500 {
					t.Errorf("bps = %d/%d, want 2500/7500",
						shares[0].PercentageBps, shares[1].PercentageBps)
				}
			},
		},
		{
			name:   "rounding remainder absorbed by largest share",
			profit: 100,
			snapshot: []EligibleCapital{
				{MemberID: "a", Capital: 50_000},
				{MemberID: "b", Capital: 50_001},
				{MemberID: "c", Capital: 50_002},
			},
			validate: func(t *testing.T, shares []DividendShare, pool int64) {
				// Floored shares are 33/33/33; member c is the largest
				// and picks up the leftover unit.
				if shares[2].Amount != 34 {
					t.Errorf("largest share = %d, want 34", shares[2].Amount)
				}
			},
		},
		{
			name:     "empty snapshot",
			profit:   100_000,
			snapshot: nil,
			wantErr:  models.ErrNoEligibleMembers,
		},
		{
			name:   "zero profit rejected",
			profit: 0,
			snapshot: []EligibleCapital{
				{MemberID: "a", Capital: 50_000},
			},
			wantErr: &models.ValidationError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, pool, err := SplitDividend(tt.profit, tt.snapshot)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var ve *models.ValidationError
				if errors.As(tt.wantErr, &ve) {
					if !models.IsValidation(err) {
						t.Errorf("expected validation error, got %v", err)
					}
				} else if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitDividend failed: %v", err)
			}

			var sum int64
			for _, s := range shares {
				sum += s.Amount
			}
			if sum != tt.profit {
				t.Errorf("Σ shares = %d, want profit %d", sum, tt.profit)
			}

			if tt.validate != nil {
				tt.validate(t, shares, pool)
			}
		})
	}
}

func TestSplitDividendLargePool(t *testing.T) {
	// Products like capital × profit overflow int64 for big societies;
	// the big.Int path must keep the arithmetic exact.
	snapshot := []EligibleCapital{
		{MemberID: "a", Capital: 4_000_000_000_000},
		{MemberID: "b", Capital: 6_000_000_000_000},
	}
	profit := int64(1_000_000_000_000)

	shares, _, err := SplitDividend(profit, snapshot)
	if err != nil {
		t.Fatalf("SplitDividend failed: %v", err)
	}
	if shares[0].Amount != 400_000_000_000 {
		t.Errorf("share a = %d, want 400000000000", shares[0].Amount)
	}
	if shares[1].Amount != 600_000_000_000 {
		t.Errorf("share b = %d, want 600000000000", shares[1].Amount)
	}
	if shares[0].Amount+shares[1].Amount != profit {
		t.Error("shares do not sum to profit")
	}
}
