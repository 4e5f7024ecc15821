// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/adeyemio/coopledger/internal/ledger"
	"github.com/adeyemio/coopledger/internal/models"
)

// Store defines the persistence operations of the ledger core. The
// implementation owns all transactional boundaries: every method that
// mutates more than one row runs as a single transaction, and balance
// checks happen inside the same transaction as the write they guard.
//
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// ── Members ──

	// CreateMember persists a member and places their referral node.
	// ID and CreatedAt are populated if unset.
	CreateMember(ctx context.Context, member *models.Member, maxTreeDepth int) error

	// GetMember retrieves a member by ID.
	GetMember(ctx context.Context, memberID string) (*models.Member, error)

	// ── Balances ──

	// GetBalance retrieves a member's balance record.
	GetBalance(ctx context.Context, memberID string) (*models.Balance, error)

	// AvailableBalance returns the raw bucket balance minus the summed
	// amounts of that member's pending and approved withdrawal requests
	// for the bucket. This is the only sanctioned way to read a
	// withdrawable amount.
	AvailableBalance(ctx context.Context, memberID string, bucket models.Bucket) (int64, error)

	// ── Contributions ──

	// CreateContribution records a pending contribution.
	CreateContribution(ctx context.Context, c *models.Contribution) error

	// GetContribution retrieves a contribution by ID.
	GetContribution(ctx context.Context, id string) (*models.Contribution, error)

	// ApproveContribution approves a pending contribution with the given
	// allocation, credits the member's buckets, increments
	// months_contributed if this is the member's first approval in the
	// contribution's month, and recomputes dividend eligibility — all in
	// one transaction. Fails ErrMonthAlreadySettled if the contribution's
	// month is settled, ErrInvalidTransition if it is not pending.
	ApproveContribution(ctx context.Context, id string, alloc ledger.Allocation) (*models.Contribution, error)

	// ── Referral tree ──

	// GetReferralNode retrieves a member's tree node.
	GetReferralNode(ctx context.Context, memberID string) (*models.ReferralNode, error)

	// AncestorsOf returns the chain from immediate parent up toward the
	// company root, at most maxLevels long.
	AncestorsOf(ctx context.Context, memberID string, maxLevels int) ([]models.ReferralNode, error)

	// ── Support fees & bonus distributions ──

	// CreateSupportFeePayment records a pending support-fee payment.
	CreateSupportFeePayment(ctx context.Context, p *models.SupportFeePayment) error

	// GetSupportFeePayment retrieves a payment by ID.
	GetSupportFeePayment(ctx context.Context, id string) (*models.SupportFeePayment, error)

	// ApproveSupportFeePayment marks a payment approved. Fails
	// ErrMonthAlreadySettled for settled months and ErrInvalidTransition
	// if already approved.
	ApproveSupportFeePayment(ctx context.Context, id string) (*models.SupportFeePayment, error)

	// CreateBonusDistribution writes a bonus batch (header, shares,
	// recipient balance credits) atomically. If a batch already exists
	// for the same source payment, the existing batch is returned with
	// created == false and nothing is written.
	CreateBonusDistribution(ctx context.Context, batch *models.BonusDistribution) (existing *models.BonusDistribution, created bool, err error)

	// GetBonusDistributionBySource retrieves the batch for a source
	// payment ID, or ErrNotFound.
	GetBonusDistributionBySource(ctx context.Context, sourcePaymentID string) (*models.BonusDistribution, error)

	// ── Dividend distributions ──

	// ListEligibleCapital returns the capital snapshot of all members
	// currently eligible for dividends.
	ListEligibleCapital(ctx context.Context) ([]ledger.EligibleCapital, error)

	// CreateDividendDistribution writes a dividend batch (header, rows,
	// recipient balance credits) atomically.
	CreateDividendDistribution(ctx context.Context, batch *models.DividendDistribution) error

	// GetDividendDistribution retrieves a batch with its rows.
	GetDividendDistribution(ctx context.Context, id string) (*models.DividendDistribution, error)

	// DeleteDividendDistribution removes a batch and its rows as one
	// unit, reversing the credited dividend amounts.
	DeleteDividendDistribution(ctx context.Context, id string) error

	// ── Withdrawals ──

	// CreateWithdrawal validates the balance rules and inserts a pending
	// request in one transaction. No bucket is decremented; the request
	// itself is the reservation.
	CreateWithdrawal(ctx context.Context, w *models.WithdrawalRequest) error

	// GetWithdrawal retrieves a request by ID.
	GetWithdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error)

	// TransitionWithdrawal moves a request from one status to another
	// with a compare-and-set, so concurrent transitions on the same
	// request cannot both succeed. Approval decrements the bucket and
	// recomputes eligibility in the same transaction. Fails
	// ErrMonthAlreadySettled if the request's month is settled.
	TransitionWithdrawal(ctx context.Context, id string, from, to models.WithdrawalStatus) (*models.WithdrawalRequest, error)

	// ListWithdrawalsByMember returns a member's requests, newest first.
	ListWithdrawalsByMember(ctx context.Context, memberID string) ([]*models.WithdrawalRequest, error)

	// ── Settlement ──

	// IsMonthSettled reports whether the month has a settled settlement.
	IsMonthSettled(ctx context.Context, month string) (bool, error)

	// SettleMonth finalizes a month: pending bonus shares dated in it
	// become approved, approved withdrawals become completed,
	// contributions are marked settled, and the settlement record is
	// written — all in one transaction. Fails ErrMonthAlreadySettled on
	// a second call.
	SettleMonth(ctx context.Context, month string) (*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
