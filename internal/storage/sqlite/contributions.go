package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adeyemio/coopledger/internal/ledger"
	"github.com/adeyemio/coopledger/internal/models"
)

// CreateContribution records a pending contribution.
func (s *SQLiteStore) CreateContribution(ctx context.Context, c *models.Contribution) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	if c.Status == "" {
		c.Status = models.ContributionPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contributions (id, member_id, amount, breakdown, month, receipt_ref, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.MemberID, c.Amount, string(c.Breakdown), c.Month,
		c.ReceiptRef, string(c.Status), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}
	return nil
}

// GetContribution retrieves a contribution by ID.
func (s *SQLiteStore) GetContribution(ctx context.Context, id string) (*models.Contribution, error) {
	return getContribution(ctx, s.db, id)
}

func getContribution(ctx context.Context, q querier, id string) (*models.Contribution, error) {
	c := &models.Contribution{}
	var receipt sql.NullString
	var settled int
	err := q.QueryRowContext(ctx,
		`SELECT id, member_id, amount, capital_amount, savings_amount, breakdown,
		        month, receipt_ref, status, settled, created_at
		 FROM contributions WHERE id = ?`, id,
	).Scan(&c.ID, &c.MemberID, &c.Amount, &c.CapitalAmount, &c.SavingsAmount,
		(*string)(&c.Breakdown), &c.Month, &receipt, (*string)(&c.Status),
		&settled, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contribution %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}
	if receipt.Valid {
		c.ReceiptRef = receipt.String
	}
	c.Settled = settled != 0
	return c, nil
}

// ApproveContribution applies an allocation to a pending contribution.
// The whole operation — status flip, bucket credits, the once-per-month
// months_contributed increment, eligibility recompute — is one
// transaction. A contribution whose month is already settled is refused.
func (s *SQLiteStore) ApproveContribution(ctx context.Context, id string, alloc ledger.Allocation) (*models.Contribution, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := getContribution(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	settled, err := monthSettled(ctx, tx, c.Month)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, fmt.Errorf("contribution %s in month %s: %w", id, c.Month, models.ErrMonthAlreadySettled)
	}

	// CAS on the pending status: a concurrent approval of the same
	// contribution loses here instead of double-crediting.
	res, err := tx.ExecContext(ctx,
		`UPDATE contributions SET status = ?, capital_amount = ?, savings_amount = ?
		 WHERE id = ? AND status = ?`,
		string(models.ContributionApproved), alloc.Capital, alloc.Savings,
		id, string(models.ContributionPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve contribution: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read approval result: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("contribution %s is not pending: %w", id, models.ErrInvalidTransition)
	}

	// First approved contribution of this member in this month bumps
	// months_contributed; later approvals in the same month must not.
	var priorApproved int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM contributions
		 WHERE member_id = ? AND month = ? AND status = ? AND id != ?`,
		c.MemberID, c.Month, string(models.ContributionApproved), id,
	).Scan(&priorApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count approvals in month: %w", err)
	}

	monthIncrement := 0
	if priorApproved == 0 {
		monthIncrement = 1
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE balances SET capital = capital + ?, savings = savings + ?,
		        months_contributed = months_contributed + ?, updated_at = ?
		 WHERE member_id = ?`,
		alloc.Capital, alloc.Savings, monthIncrement, time.Now().Unix(), c.MemberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	if err := recomputeEligibility(ctx, tx, c.MemberID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.Status = models.ContributionApproved
	c.CapitalAmount = alloc.Capital
	c.SavingsAmount = alloc.Savings
	return c, nil
}
