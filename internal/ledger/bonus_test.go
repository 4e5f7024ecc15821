package ledger

import "testing"

func TestSplitBonus(t *testing.T) {
	tests := []struct {
		name     string
		fee      int64
		reserve  int64
		chainLen int
		maxDepth int
		validate func(t *testing.T, split BonusSplit)
	}{
		{
			name: "full depth chain takes whole pool",
			fee:  500, reserve: 200, chainLen: 10, maxDepth: 10,
			validate: func(t *testing.T, split BonusSplit) {
				if split.Pool != 300 {
					t.Errorf("pool = %d, want 300", split.Pool)
				}
				if len(split.LevelShares) != 10 {
					t.Fatalf("got %d level shares, want 10", len(split.LevelShares))
				}
				for i, share := range split.LevelShares {
					if share != 30 {
						t.Errorf("level %d share = %d, want 30", i+1, share)
					}
				}
				if split.CompanyShare != 0 {
					t.Errorf("company share = %d, want 0", split.CompanyShare)
				}
			},
		},
		{
			name: "short chain leaves rest to company",
			fee:  500, reserve: 200, chainLen: 2, maxDepth: 10,
			validate: func(t *testing.T, split BonusSplit) {
				if len(split.LevelShares) != 2 {
					t.Fatalf("got %d level shares, want 2", len(split.LevelShares))
				}
				if split.CompanyShare != 240 {
					t.Errorf("company share = %d, want 240", split.CompanyShare)
				}
			},
		},
		{
			name: "no ancestors routes whole pool to company",
			fee:  500, reserve: 200, chainLen: 0, maxDepth: 10,
			validate: func(t *testing.T, split BonusSplit) {
				if len(split.LevelShares) != 0 {
					t.Fatalf("got %d level shares, want 0", len(split.LevelShares))
				}
				if split.CompanyShare != 300 {
					t.Errorf("company share = %d, want 300", split.CompanyShare)
				}
			},
		},
		{
			name: "rounding remainder lands in company share",
			fee:  500, reserve: 200, chainLen: 7, maxDepth: 7,
			validate: func(t *testing.T, split BonusSplit) {
				// 300 / 7 = 42 per level, 6 left over.
				if split.CompanyShare != 6 {
					t.Errorf("company share = %d, want 6", split.CompanyShare)
				}
			},
		},
		{
			name: "chain longer than depth is capped",
			fee:  500, reserve: 200, chainLen: 15, maxDepth: 5,
			validate: func(t *testing.T, split BonusSplit) {
				if len(split.LevelShares) != 5 {
					t.Fatalf("got %d level shares, want 5", len(split.LevelShares))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := SplitBonus(tt.fee, tt.reserve, tt.chainLen, tt.maxDepth)

			// Invariant for every case: shares + company == pool, and
			// pool + reserve == fee.
			var sum int64
			for _, s := range split.LevelShares {
				sum += s
			}
			if sum+split.CompanyShare != split.Pool {
				t.Errorf("shares %d + company %d != pool %d", sum, split.CompanyShare, split.Pool)
			}
			if split.Pool+split.Reserve != tt.fee {
				t.Errorf("pool %d + reserve %d != fee %d", split.Pool, split.Reserve, tt.fee)
			}

			if tt.validate != nil {
				tt.validate(t, split)
			}
		})
	}
}
