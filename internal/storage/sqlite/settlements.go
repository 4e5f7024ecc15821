package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adeyemio/coopledger/internal/models"
)

// IsMonthSettled reports whether the month has a settled settlement.
func (s *SQLiteStore) IsMonthSettled(ctx context.Context, month string) (bool, error) {
	return monthSettled(ctx, s.db, month)
}

// SettleMonth is the commit boundary for a calendar month. In one
// transaction: pending bonus shares dated in the month become approved,
// approved withdrawal requests complete (debiting their buckets),
// contributions are marked settled, and the settlement row is written
// with aggregated totals. A second call for the same month fails
// ErrMonthAlreadySettled; any failure rolls the whole cascade back and no
// settlement is recorded.
func (s *SQLiteStore) SettleMonth(ctx context.Context, month string) (*models.Settlement, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	settled, err := monthSettled(ctx, tx, month)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, fmt.Errorf("month %s: %w", month, models.ErrMonthAlreadySettled)
	}

	settlement := &models.Settlement{
		ID:        uuid.New().String(),
		Month:     month,
		Status:    models.SettlementSettled,
		SettledAt: time.Now().Unix(),
	}

	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM contributions WHERE month = ? AND status = ?",
		month, string(models.ContributionApproved),
	).Scan(&settlement.TotalContributions)
	if err != nil {
		return nil, fmt.Errorf("failed to sum contributions: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(bs.amount), 0) FROM bonus_shares bs
		 JOIN bonus_distributions bd ON bd.id = bs.distribution_id
		 WHERE bd.month = ?`, month,
	).Scan(&settlement.TotalBonuses)
	if err != nil {
		return nil, fmt.Errorf("failed to sum bonuses: %w", err)
	}

	// Approve the month's pending bonus shares.
	_, err = tx.ExecContext(ctx,
		`UPDATE bonus_shares SET status = ?
		 WHERE status = ? AND distribution_id IN
		   (SELECT id FROM bonus_distributions WHERE month = ?)`,
		string(models.BonusShareApproved), string(models.BonusSharePending), month,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve bonus shares: %w", err)
	}

	// Complete the month's approved withdrawals, debiting each bucket.
	rows, err := tx.QueryContext(ctx,
		`SELECT id, member_id, bucket, amount FROM withdrawal_requests
		 WHERE month = ? AND status = ?`,
		month, string(models.WithdrawalApproved),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved withdrawals: %w", err)
	}
	type pendingDebit struct {
		id, memberID string
		bucket       models.Bucket
		amount       int64
	}
	var debits []pendingDebit
	for rows.Next() {
		var d pendingDebit
		var bucket string
		if err := rows.Scan(&d.id, &d.memberID, &bucket, &d.amount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		d.bucket = models.Bucket(bucket)
		debits = append(debits, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", err)
	}

	now := time.Now().Unix()
	for _, d := range debits {
		_, err = tx.ExecContext(ctx,
			"UPDATE withdrawal_requests SET status = ?, updated_at = ? WHERE id = ?",
			string(models.WithdrawalCompleted), now, d.id,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to complete withdrawal %s: %w", d.id, err)
		}
		if err := debitBucket(ctx, tx, d.memberID, d.bucket, d.amount); err != nil {
			return nil, err
		}
		settlement.TotalWithdrawals += d.amount
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE contributions SET settled = 1 WHERE month = ?", month,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark contributions settled: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, month, total_contributions, total_bonuses, total_withdrawals, status, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.Month, settlement.TotalContributions,
		settlement.TotalBonuses, settlement.TotalWithdrawals,
		string(settlement.Status), settlement.SettledAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert settlement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return settlement, nil
}
