// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/adeyemio/coopledger/internal/ledger"
	"github.com/adeyemio/coopledger/internal/models"
	"github.com/adeyemio/coopledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and funneling
	// everything through one conn makes every balance check serialize
	// with the write it guards.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx so shared read helpers
// can run inside or outside a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// availableBalance is the single sanctioned reservation formula:
// raw bucket balance minus the summed amounts of pending and approved
// withdrawal requests for that bucket. Every call site, including the
// withdrawal-creation transaction itself, goes through here.
func availableBalance(ctx context.Context, q querier, memberID string, bucket models.Bucket) (int64, error) {
	var raw int64
	col, err := bucketColumn(bucket)
	if err != nil {
		return 0, err
	}

	err = q.QueryRowContext(ctx,
		"SELECT "+col+" FROM balances WHERE member_id = ?", memberID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("balance for member %s: %w", memberID, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	var reserved int64
	err = q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM withdrawal_requests
		 WHERE member_id = ? AND bucket = ? AND status IN (?, ?)`,
		memberID, string(bucket),
		string(models.WithdrawalPending), string(models.WithdrawalApproved),
	).Scan(&reserved)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reservations: %w", err)
	}

	return raw - reserved, nil
}

// bucketColumn maps a bucket to its balances column. The names are fixed
// identifiers, never user input interpolated into SQL.
func bucketColumn(bucket models.Bucket) (string, error) {
	switch bucket {
	case models.BucketCapital:
		return "capital", nil
	case models.BucketSavings:
		return "savings", nil
	case models.BucketDividend:
		return "dividend_earned", nil
	case models.BucketBonus:
		return "bonus_earned", nil
	}
	return "", models.Validationf("bucket", "unknown bucket %q", bucket)
}

// recomputeEligibility re-derives the eligible_for_dividend flag from the
// member's current balance. Called inside every transaction that mutates
// a balance; the flag is never written from anywhere else.
func recomputeEligibility(ctx context.Context, q querier, memberID string) error {
	var capital int64
	var months int
	var memberType string
	err := q.QueryRowContext(ctx,
		`SELECT b.capital, b.months_contributed, m.member_type
		 FROM balances b JOIN members m ON m.id = b.member_id
		 WHERE b.member_id = ?`, memberID,
	).Scan(&capital, &months, &memberType)
	if err == sql.ErrNoRows {
		return fmt.Errorf("balance for member %s: %w", memberID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read balance for eligibility: %w", err)
	}

	eligible := ledger.EligibleForDividend(capital, months, models.MemberType(memberType))
	_, err = q.ExecContext(ctx,
		"UPDATE balances SET eligible_for_dividend = ?, updated_at = ? WHERE member_id = ?",
		boolToInt(eligible), time.Now().Unix(), memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to update eligibility: %w", err)
	}
	return nil
}

// monthSettled reports whether the month has a settled settlement row.
func monthSettled(ctx context.Context, q querier, month string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM settlements WHERE month = ? AND status = ?",
		month, string(models.SettlementSettled),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check settlement: %w", err)
	}
	return true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
