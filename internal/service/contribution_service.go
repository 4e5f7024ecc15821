package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adeyemio/coopledger/internal/events"
	"github.com/adeyemio/coopledger/internal/ledger"
	"github.com/adeyemio/coopledger/internal/models"
	"github.com/adeyemio/coopledger/internal/storage"
)

// ContributionService records member contributions and allocates them on
// approval.
type ContributionService struct {
	store        storage.Store
	emitter      events.Emitter
	actingAmount int64
}

// NewContributionService creates a ContributionService. actingAmount is
// the fixed contribution acting members pay each month.
func NewContributionService(store storage.Store, emitter events.Emitter, actingAmount int64) *ContributionService {
	return &ContributionService{store: store, emitter: emitter, actingAmount: actingAmount}
}

// Submit records a pending contribution. Contributors choose a breakdown;
// acting members always contribute the fixed acting amount, so a supplied
// amount or breakdown is rejected as malformed.
func (s *ContributionService) Submit(ctx context.Context, memberID string, amount int64, breakdown models.BreakdownType, month, receiptRef string) (*models.Contribution, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if month == "" {
		month = currentMonth()
	}
	if !validMonth(month) {
		return nil, models.Validationf("month", "want YYYY-MM, got %q", month)
	}

	if member.Type == models.MemberActing {
		if amount != 0 && amount != s.actingAmount {
			return nil, models.Validationf("amount", "acting members contribute the fixed amount %d", s.actingAmount)
		}
		amount = s.actingAmount
		breakdown = models.Breakdown100Capital
	} else {
		if amount <= 0 {
			return nil, models.Validationf("amount", "must be positive, got %d", amount)
		}
		switch breakdown {
		case models.Breakdown8020, models.Breakdown100Capital:
		default:
			return nil, models.Validationf("breakdown", "unknown breakdown type %q", breakdown)
		}
	}

	c := &models.Contribution{
		MemberID:   memberID,
		Amount:     amount,
		Breakdown:  breakdown,
		Month:      month,
		ReceiptRef: receiptRef,
	}
	if err := s.store.CreateContribution(ctx, c); err != nil {
		return nil, fmt.Errorf("submit contribution: %w", err)
	}
	return c, nil
}

// Approve allocates a pending contribution into the member's buckets.
// The allocation, the once-per-month tenure increment and the eligibility
// recompute all commit atomically in the store.
func (s *ContributionService) Approve(ctx context.Context, contributionID string) (*models.Contribution, error) {
	c, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	member, err := s.store.GetMember(ctx, c.MemberID)
	if err != nil {
		return nil, err
	}

	alloc, err := ledger.Allocate(c.Amount, c.Breakdown, member.Type)
	if err != nil {
		return nil, err
	}

	approved, err := s.store.ApproveContribution(ctx, contributionID, alloc)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "contribution approved",
		"contribution_id", approved.ID, "member_id", approved.MemberID,
		"capital", alloc.Capital, "savings", alloc.Savings, "month", approved.Month)
	s.emitter.Emit(ctx, events.Event{
		Type:     events.ContributionApproved,
		MemberID: approved.MemberID,
		RefID:    approved.ID,
		Amount:   approved.Amount,
		Month:    approved.Month,
	})
	return approved, nil
}

// Get retrieves a contribution.
func (s *ContributionService) Get(ctx context.Context, id string) (*models.Contribution, error) {
	return s.store.GetContribution(ctx, id)
}
