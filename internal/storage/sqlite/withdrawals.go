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

// CreateWithdrawal checks every balance rule and inserts a pending
// request in one transaction. The insert is the reservation: nothing is
// decremented until the request completes, but the amount immediately
// counts against the member's available balance.
func (s *SQLiteStore) CreateWithdrawal(ctx context.Context, w *models.WithdrawalRequest) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if w.CreatedAt == 0 {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	w.Status = models.WithdrawalPending

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw int64
	var months int
	col, err := bucketColumn(w.Bucket)
	if err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx,
		"SELECT "+col+", months_contributed FROM balances WHERE member_id = ?",
		w.MemberID,
	).Scan(&raw, &months)
	if err == sql.ErrNoRows {
		return fmt.Errorf("balance for member %s: %w", w.MemberID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	// Bonus is exempt from the tenure gate; everything else requires the
	// minimum months contributed.
	if w.Bucket != models.BucketBonus && months < ledger.MinimumMonths {
		return fmt.Errorf("member %s has %d months contributed: %w",
			w.MemberID, months, models.ErrIneligibleMember)
	}

	if (w.Bucket == models.BucketDividend || w.Bucket == models.BucketBonus) &&
		w.Amount < ledger.MinimumThreshold {
		return fmt.Errorf("amount %d below threshold %d: %w",
			w.Amount, ledger.MinimumThreshold, models.ErrBelowMinimumThreshold)
	}

	if w.Bucket == models.BucketCapital && raw-w.Amount < ledger.MinimumCapital {
		return fmt.Errorf("capital would drop to %d: %w",
			raw-w.Amount, models.ErrBelowMinimumCapital)
	}

	available, err := availableBalance(ctx, tx, w.MemberID, w.Bucket)
	if err != nil {
		return err
	}
	if w.Amount > available {
		return fmt.Errorf("requested %d, available %d: %w",
			w.Amount, available, models.ErrInsufficientBalance)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO withdrawal_requests
		 (id, member_id, bucket, amount, bank_name, account_name, account_number, status, month, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.MemberID, string(w.Bucket), w.Amount,
		w.Bank.BankName, w.Bank.AccountName, w.Bank.AccountNumber,
		string(w.Status), w.Month, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert withdrawal request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetWithdrawal retrieves a request by ID.
func (s *SQLiteStore) GetWithdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	return getWithdrawal(ctx, s.db, id)
}

func getWithdrawal(ctx context.Context, q querier, id string) (*models.WithdrawalRequest, error) {
	w := &models.WithdrawalRequest{}
	err := q.QueryRowContext(ctx,
		`SELECT id, member_id, bucket, amount, bank_name, account_name, account_number,
		        status, month, created_at, updated_at
		 FROM withdrawal_requests WHERE id = ?`, id,
	).Scan(&w.ID, &w.MemberID, (*string)(&w.Bucket), &w.Amount,
		&w.Bank.BankName, &w.Bank.AccountName, &w.Bank.AccountNumber,
		(*string)(&w.Status), &w.Month, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("withdrawal %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return w, nil
}

// allowedTransition encodes the state machine: pending → approved,
// pending → rejected, approved → completed.
func allowedTransition(from, to models.WithdrawalStatus) bool {
	switch from {
	case models.WithdrawalPending:
		return to == models.WithdrawalApproved || to == models.WithdrawalRejected
	case models.WithdrawalApproved:
		return to == models.WithdrawalCompleted
	}
	return false
}

// TransitionWithdrawal moves a request through its state machine with a
// compare-and-set on the current status, so two concurrent admin actions
// on the same request cannot both win. Completion is the point where the
// bucket is actually decremented (the reservation formula stops counting
// completed requests). Requests in settled months are frozen.
func (s *SQLiteStore) TransitionWithdrawal(ctx context.Context, id string, from, to models.WithdrawalStatus) (*models.WithdrawalRequest, error) {
	if !allowedTransition(from, to) {
		return nil, fmt.Errorf("transition %s → %s: %w", from, to, models.ErrInvalidTransition)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	w, err := getWithdrawal(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	settled, err := monthSettled(ctx, tx, w.Month)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, fmt.Errorf("withdrawal %s in month %s: %w", id, w.Month, models.ErrMonthAlreadySettled)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE withdrawal_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), time.Now().Unix(), id, string(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to transition withdrawal: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read transition result: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("withdrawal %s is not %s: %w", id, from, models.ErrInvalidTransition)
	}

	if to == models.WithdrawalCompleted {
		if err := debitBucket(ctx, tx, w.MemberID, w.Bucket, w.Amount); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.Status = to
	return w, nil
}

// debitBucket decrements a bucket on withdrawal completion and recomputes
// eligibility. The CHECK constraints on balances catch any negative
// result and abort the transaction.
func debitBucket(ctx context.Context, tx *sql.Tx, memberID string, bucket models.Bucket, amount int64) error {
	col, err := bucketColumn(bucket)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE balances SET "+col+" = "+col+" - ?, updated_at = ? WHERE member_id = ?",
		amount, time.Now().Unix(), memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to debit %s: %w", bucket, err)
	}
	return recomputeEligibility(ctx, tx, memberID)
}

// ListWithdrawalsByMember returns a member's requests, newest first.
func (s *SQLiteStore) ListWithdrawalsByMember(ctx context.Context, memberID string) ([]*models.WithdrawalRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, member_id, bucket, amount, bank_name, account_name, account_number,
		        status, month, created_at, updated_at
		 FROM withdrawal_requests WHERE member_id = ? ORDER BY created_at DESC`, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	defer rows.Close()

	var list []*models.WithdrawalRequest
	for rows.Next() {
		w := &models.WithdrawalRequest{}
		if err := rows.Scan(&w.ID, &w.MemberID, (*string)(&w.Bucket), &w.Amount,
			&w.Bank.BankName, &w.Bank.AccountName, &w.Bank.AccountNumber,
			(*string)(&w.Status), &w.Month, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", err)
	}
	return list, nil
}
