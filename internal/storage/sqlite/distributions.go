package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adeyemio/coopledger/internal/ledger"
	"github.com/adeyemio/coopledger/internal/models"
)

// CreateSupportFeePayment records a pending support-fee payment.
func (s *SQLiteStore) CreateSupportFeePayment(ctx context.Context, p *models.SupportFeePayment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO support_fee_payments (id, member_id, amount, month, receipt_ref, approved, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		p.ID, p.MemberID, p.Amount, p.Month, p.ReceiptRef, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert support fee payment: %w", err)
	}
	return nil
}

// GetSupportFeePayment retrieves a payment by ID.
func (s *SQLiteStore) GetSupportFeePayment(ctx context.Context, id string) (*models.SupportFeePayment, error) {
	p := &models.SupportFeePayment{}
	var receipt sql.NullString
	var approved int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, member_id, amount, month, receipt_ref, approved, created_at
		 FROM support_fee_payments WHERE id = ?`, id,
	).Scan(&p.ID, &p.MemberID, &p.Amount, &p.Month, &receipt, &approved, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("support fee payment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get support fee payment: %w", err)
	}
	if receipt.Valid {
		p.ReceiptRef = receipt.String
	}
	p.Approved = approved != 0
	return p, nil
}

// ApproveSupportFeePayment flips a payment to approved with a
// compare-and-set. Settled months are refused.
func (s *SQLiteStore) ApproveSupportFeePayment(ctx context.Context, id string) (*models.SupportFeePayment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var month string
	err = tx.QueryRowContext(ctx,
		"SELECT month FROM support_fee_payments WHERE id = ?", id,
	).Scan(&month)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("support fee payment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payment month: %w", err)
	}

	settled, err := monthSettled(ctx, tx, month)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, fmt.Errorf("payment %s in month %s: %w", id, month, models.ErrMonthAlreadySettled)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE support_fee_payments SET approved = 1 WHERE id = ? AND approved = 0", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve payment: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read approval result: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("payment %s already approved: %w", id, models.ErrInvalidTransition)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetSupportFeePayment(ctx, id)
}

// CreateBonusDistribution writes a bonus batch atomically: header, share
// rows, and bonus_earned credits for every member share. If a batch for
// the same source payment already exists — whether found up front or lost
// to a concurrent insert on the UNIQUE source_payment_id constraint — the
// existing batch is returned with created == false.
func (s *SQLiteStore) CreateBonusDistribution(ctx context.Context, batch *models.BonusDistribution) (*models.BonusDistribution, bool, error) {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	if batch.CreatedAt == 0 {
		batch.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := getBonusDistributionBySource(ctx, tx, batch.SourcePaymentID)
	if err == nil {
		return existing, false, nil
	}
	if err != nil && !isNotFound(err) {
		return nil, false, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bonus_distributions (id, source_payment_id, amount, reserve, pool, participant_count, month, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.SourcePaymentID, batch.Amount, batch.Reserve, batch.Pool,
		batch.ParticipantCount, batch.Month, batch.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race on the source payment id; the winner's
			// batch is the batch.
			tx.Rollback()
			won, gerr := s.GetBonusDistributionBySource(ctx, batch.SourcePaymentID)
			if gerr != nil {
				return nil, false, fmt.Errorf("%w: %v", models.ErrDuplicateDistribution, gerr)
			}
			return won, false, nil
		}
		return nil, false, fmt.Errorf("%w: failed to insert bonus batch: %v", models.ErrBatchWriteFailed, err)
	}

	for i := range batch.Shares {
		share := &batch.Shares[i]
		if share.ID == "" {
			share.ID = uuid.New().String()
		}
		share.DistributionID = batch.ID
		if share.Status == "" {
			share.Status = models.BonusSharePending
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO bonus_shares (id, distribution_id, member_id, amount, level, is_company_share, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			share.ID, share.DistributionID, share.MemberID, share.Amount,
			share.Level, boolToInt(share.IsCompanyShare), string(share.Status),
		)
		if err != nil {
			return nil, false, fmt.Errorf("%w: failed to insert bonus share: %v", models.ErrBatchWriteFailed, err)
		}

		if share.IsCompanyShare {
			continue
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE balances SET bonus_earned = bonus_earned + ?, updated_at = ? WHERE member_id = ?",
			share.Amount, time.Now().Unix(), share.MemberID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("%w: failed to credit bonus: %v", models.ErrBatchWriteFailed, err)
		}
		if err := recomputeEligibility(ctx, tx, share.MemberID); err != nil {
			return nil, false, fmt.Errorf("%w: %v", models.ErrBatchWriteFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("%w: failed to commit: %v", models.ErrBatchWriteFailed, err)
	}
	return batch, true, nil
}

// GetBonusDistributionBySource retrieves the batch for a source payment.
func (s *SQLiteStore) GetBonusDistributionBySource(ctx context.Context, sourcePaymentID string) (*models.BonusDistribution, error) {
	return getBonusDistributionBySource(ctx, s.db, sourcePaymentID)
}

func getBonusDistributionBySource(ctx context.Context, q querier, sourcePaymentID string) (*models.BonusDistribution, error) {
	batch := &models.BonusDistribution{}
	err := q.QueryRowContext(ctx,
		`SELECT id, source_payment_id, amount, reserve, pool, participant_count, month, created_at
		 FROM bonus_distributions WHERE source_payment_id = ?`, sourcePaymentID,
	).Scan(&batch.ID, &batch.SourcePaymentID, &batch.Amount, &batch.Reserve,
		&batch.Pool, &batch.ParticipantCount, &batch.Month, &batch.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bonus distribution for payment %s: %w", sourcePaymentID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus distribution: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, distribution_id, member_id, amount, level, is_company_share, status
		 FROM bonus_shares WHERE distribution_id = ? ORDER BY level`, batch.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var share models.BonusShare
		var company int
		if err := rows.Scan(&share.ID, &share.DistributionID, &share.MemberID,
			&share.Amount, &share.Level, &company, (*string)(&share.Status)); err != nil {
			return nil, fmt.Errorf("failed to scan bonus share: %w", err)
		}
		share.IsCompanyShare = company != 0
		batch.Shares = append(batch.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bonus shares: %w", err)
	}
	return batch, nil
}

// ListEligibleCapital snapshots the capital of every member whose derived
// eligibility flag is set.
func (s *SQLiteStore) ListEligibleCapital(ctx context.Context) ([]ledger.EligibleCapital, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, capital FROM balances
		 WHERE eligible_for_dividend = 1 ORDER BY member_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible members: %w", err)
	}
	defer rows.Close()

	var snapshot []ledger.EligibleCapital
	for rows.Next() {
		var ec ledger.EligibleCapital
		if err := rows.Scan(&ec.MemberID, &ec.Capital); err != nil {
			return nil, fmt.Errorf("failed to scan eligible member: %w", err)
		}
		snapshot = append(snapshot, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate eligible members: %w", err)
	}
	return snapshot, nil
}

// CreateDividendDistribution writes a dividend batch atomically: header,
// per-member rows, and dividend_earned credits. Any row failure rolls the
// whole batch back.
func (s *SQLiteStore) CreateDividendDistribution(ctx context.Context, batch *models.DividendDistribution) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	if batch.CreatedAt == 0 {
		batch.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO dividend_distributions (id, total_profit, total_capital_pool, eligible_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.TotalProfit, batch.TotalCapitalPool, batch.EligibleCount, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert dividend batch: %v", models.ErrBatchWriteFailed, err)
	}

	for i := range batch.Dividends {
		d := &batch.Dividends[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		d.DistributionID = batch.ID

		_, err = tx.ExecContext(ctx,
			`INSERT INTO dividends (id, distribution_id, member_id, amount, percentage_bps, capital_snapshot)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			d.ID, d.DistributionID, d.MemberID, d.Amount, d.PercentageBps, d.CapitalSnapshot,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to insert dividend row: %v", models.ErrBatchWriteFailed, err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE balances SET dividend_earned = dividend_earned + ?, updated_at = ? WHERE member_id = ?",
			d.Amount, time.Now().Unix(), d.MemberID,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to credit dividend: %v", models.ErrBatchWriteFailed, err)
		}
		if err := recomputeEligibility(ctx, tx, d.MemberID); err != nil {
			return fmt.Errorf("%w: %v", models.ErrBatchWriteFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", models.ErrBatchWriteFailed, err)
	}
	return nil
}

// GetDividendDistribution retrieves a batch with its rows.
func (s *SQLiteStore) GetDividendDistribution(ctx context.Context, id string) (*models.DividendDistribution, error) {
	return getDividendDistribution(ctx, s.db, id)
}

func getDividendDistribution(ctx context.Context, q querier, id string) (*models.DividendDistribution, error) {
	batch := &models.DividendDistribution{}
	err := q.QueryRowContext(ctx,
		`SELECT id, total_profit, total_capital_pool, eligible_count, created_at
		 FROM dividend_distributions WHERE id = ?`, id,
	).Scan(&batch.ID, &batch.TotalProfit, &batch.TotalCapitalPool,
		&batch.EligibleCount, &batch.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dividend distribution %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dividend distribution: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, distribution_id, member_id, amount, percentage_bps, capital_snapshot
		 FROM dividends WHERE distribution_id = ? ORDER BY member_id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get dividend rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.Dividend
		if err := rows.Scan(&d.ID, &d.DistributionID, &d.MemberID,
			&d.Amount, &d.PercentageBps, &d.CapitalSnapshot); err != nil {
			return nil, fmt.Errorf("failed to scan dividend row: %w", err)
		}
		batch.Dividends = append(batch.Dividends, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dividend rows: %w", err)
	}
	return batch, nil
}

// DeleteDividendDistribution removes a batch as one unit: every credited
// amount is reversed, then the header delete cascades to the rows.
// Partial deletion is impossible — any failure rolls everything back.
func (s *SQLiteStore) DeleteDividendDistribution(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	batch, err := getDividendDistribution(ctx, tx, id)
	if err != nil {
		return err
	}

	for _, d := range batch.Dividends {
		_, err = tx.ExecContext(ctx,
			"UPDATE balances SET dividend_earned = dividend_earned - ?, updated_at = ? WHERE member_id = ?",
			d.Amount, time.Now().Unix(), d.MemberID,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to reverse dividend credit: %v", models.ErrBatchWriteFailed, err)
		}
		if err := recomputeEligibility(ctx, tx, d.MemberID); err != nil {
			return fmt.Errorf("%w: %v", models.ErrBatchWriteFailed, err)
		}
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM dividend_distributions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete dividend batch: %v", models.ErrBatchWriteFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", models.ErrBatchWriteFailed, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite surfaces these as plain error strings.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
