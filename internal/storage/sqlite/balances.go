package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adeyemio/coopledger/internal/models"
)

// GetBalance retrieves a member's balance record.
func (s *SQLiteStore) GetBalance(ctx context.Context, memberID string) (*models.Balance, error) {
	b := &models.Balance{}
	var eligible int
	err := s.db.QueryRowContext(ctx,
		`SELECT member_id, capital, savings, dividend_earned, bonus_earned,
		        months_contributed, eligible_for_dividend, updated_at
		 FROM balances WHERE member_id = ?`, memberID,
	).Scan(&b.MemberID, &b.Capital, &b.Savings, &b.DividendEarned, &b.BonusEarned,
		&b.MonthsContributed, &eligible, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("balance for member %s: %w", memberID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	b.EligibleForDividend = eligible != 0
	return b, nil
}

// AvailableBalance returns the withdrawable amount of a bucket: the raw
// balance minus all pending and approved reservations.
func (s *SQLiteStore) AvailableBalance(ctx context.Context, memberID string, bucket models.Bucket) (int64, error) {
	return availableBalance(ctx, s.db, memberID, bucket)
}
