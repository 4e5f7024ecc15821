package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adeyemio/coopledger/internal/events"
	"github.com/adeyemio/coopledger/internal/ledger"
	"github.com/adeyemio/coopledger/internal/models"
	"github.com/adeyemio/coopledger/internal/storage"
)

// BonusService records recurring support-fee payments and converts each
// approved payment into one bonus distribution batch over the paying
// member's referral ancestors.
type BonusService struct {
	store   storage.Store
	emitter events.Emitter

	fee      int64 // fixed support fee
	reserve  int64 // portion routed to the reserve fund
	maxDepth int   // ancestor levels paid from the pool
}

// NewBonusService creates a BonusService with the society's fee rules.
func NewBonusService(store storage.Store, emitter events.Emitter, fee, reserve int64, maxDepth int) *BonusService {
	return &BonusService{store: store, emitter: emitter, fee: fee, reserve: reserve, maxDepth: maxDepth}
}

// RecordPayment records a pending support-fee payment at the fixed fee.
func (s *BonusService) RecordPayment(ctx context.Context, memberID, month, receiptRef string) (*models.SupportFeePayment, error) {
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	if month == "" {
		month = currentMonth()
	}
	if !validMonth(month) {
		return nil, models.Validationf("month", "want YYYY-MM, got %q", month)
	}

	p := &models.SupportFeePayment{
		MemberID:   memberID,
		Amount:     s.fee,
		Month:      month,
		ReceiptRef: receiptRef,
	}
	if err := s.store.CreateSupportFeePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("record support fee: %w", err)
	}
	return p, nil
}

// ApprovePayment approves a fee payment and runs the bonus distribution
// for it. The whole path is idempotent on the payment id: approving an
// already-approved payment re-enters Distribute, which returns the
// existing batch, so a retried trigger can never double-pay.
func (s *BonusService) ApprovePayment(ctx context.Context, paymentID string) (*models.BonusDistribution, error) {
	payment, err := s.store.ApproveSupportFeePayment(ctx, paymentID)
	if errors.Is(err, models.ErrInvalidTransition) {
		payment, err = s.store.GetSupportFeePayment(ctx, paymentID)
	}
	if err != nil {
		return nil, err
	}
	return s.Distribute(ctx, payment)
}

// Distribute creates the bonus batch for an approved payment: the fee
// minus the reserve is split into equal level shares over the ancestor
// chain, and whatever the chain cannot absorb — missing levels plus the
// rounding remainder — is credited as the company share. Exactly one
// batch ever exists per payment; re-invocation returns the existing batch.
func (s *BonusService) Distribute(ctx context.Context, payment *models.SupportFeePayment) (*models.BonusDistribution, error) {
	if !payment.Approved {
		return nil, fmt.Errorf("payment %s not approved: %w", payment.ID, models.ErrInvalidTransition)
	}

	chain, err := s.store.AncestorsOf(ctx, payment.MemberID, s.maxDepth)
	if err != nil {
		return nil, err
	}

	split := ledger.SplitBonus(payment.Amount, s.reserve, len(chain), s.maxDepth)

	batch := &models.BonusDistribution{
		SourcePaymentID:  payment.ID,
		Amount:           payment.Amount,
		Reserve:          split.Reserve,
		Pool:             split.Pool,
		ParticipantCount: len(split.LevelShares),
		Month:            payment.Month,
	}
	for i, amount := range split.LevelShares {
		batch.Shares = append(batch.Shares, models.BonusShare{
			MemberID: chain[i].MemberID,
			Amount:   amount,
			Level:    i + 1,
		})
	}
	batch.Shares = append(batch.Shares, models.BonusShare{
		MemberID:       models.CompanyRootID,
		Amount:         split.CompanyShare,
		IsCompanyShare: true,
	})

	result, created, err := s.store.CreateBonusDistribution(ctx, batch)
	if err != nil {
		return nil, err
	}
	if !created {
		slog.InfoContext(ctx, "bonus distribution already exists",
			"payment_id", payment.ID, "distribution_id", result.ID)
		return result, nil
	}

	slog.InfoContext(ctx, "bonus distributed",
		"payment_id", payment.ID, "distribution_id", result.ID,
		"pool", result.Pool, "participants", result.ParticipantCount)
	s.emitter.Emit(ctx, events.Event{
		Type:     events.BonusDistributed,
		MemberID: payment.MemberID,
		RefID:    result.ID,
		Amount:   result.Pool,
		Month:    result.Month,
	})
	return result, nil
}

// GetPayment retrieves a support-fee payment.
func (s *BonusService) GetPayment(ctx context.Context, id string) (*models.SupportFeePayment, error) {
	return s.store.GetSupportFeePayment(ctx, id)
}

// GetDistribution retrieves the batch for a source payment.
func (s *BonusService) GetDistribution(ctx context.Context, sourcePaymentID string) (*models.BonusDistribution, error) {
	return s.store.GetBonusDistributionBySource(ctx, sourcePaymentID)
}
