package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adeyemio/coopledger/internal/events"
	"github.com/adeyemio/coopledger/internal/models"
	"github.com/adeyemio/coopledger/internal/storage"
)

// WithdrawalService handles withdrawal requests and their admin
// transitions. All balance rules are enforced transactionally by the
// store; this layer validates shape and emits events.
type WithdrawalService struct {
	store   storage.Store
	emitter events.Emitter
}

// NewWithdrawalService creates a WithdrawalService.
func NewWithdrawalService(store storage.Store, emitter events.Emitter) *WithdrawalService {
	return &WithdrawalService{store: store, emitter: emitter}
}

// Request reserves amount against a member's bucket. On success the
// request is pending; the bucket is untouched but the amount no longer
// counts as available.
func (s *WithdrawalService) Request(ctx context.Context, memberID string, bucket models.Bucket, amount int64, bank models.BankDetails) (*models.WithdrawalRequest, error) {
	if !bucket.Valid() {
		return nil, models.Validationf("bucket", "unknown bucket %q", bucket)
	}
	if amount <= 0 {
		return nil, models.Validationf("amount", "must be positive, got %d", amount)
	}
	if bank.AccountNumber == "" || bank.BankName == "" {
		return nil, models.Validationf("bank_details", "bank name and account number required")
	}

	w := &models.WithdrawalRequest{
		MemberID: memberID,
		Bucket:   bucket,
		Amount:   amount,
		Bank:     bank,
		Month:    currentMonth(),
	}
	if err := s.store.CreateWithdrawal(ctx, w); err != nil {
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}

	slog.InfoContext(ctx, "withdrawal requested",
		"withdrawal_id", w.ID, "member_id", memberID, "bucket", bucket, "amount", amount)
	s.emitter.Emit(ctx, events.Event{
		Type:     events.WithdrawalRequested,
		MemberID: memberID,
		RefID:    w.ID,
		Amount:   amount,
		Month:    w.Month,
	})
	return w, nil
}

// Approve moves a pending request to approved.
func (s *WithdrawalService) Approve(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	return s.transition(ctx, id, models.WithdrawalPending, models.WithdrawalApproved, events.WithdrawalApproved)
}

// Complete moves an approved request to completed, debiting the bucket.
func (s *WithdrawalService) Complete(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	return s.transition(ctx, id, models.WithdrawalApproved, models.WithdrawalCompleted, events.WithdrawalCompleted)
}

// Reject moves a pending request to rejected, releasing the reservation.
func (s *WithdrawalService) Reject(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	return s.transition(ctx, id, models.WithdrawalPending, models.WithdrawalRejected, events.WithdrawalRejected)
}

func (s *WithdrawalService) transition(ctx context.Context, id string, from, to models.WithdrawalStatus, eventType string) (*models.WithdrawalRequest, error) {
	w, err := s.store.TransitionWithdrawal(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "withdrawal transitioned",
		"withdrawal_id", w.ID, "member_id", w.MemberID, "from", from, "to", to)
	s.emitter.Emit(ctx, events.Event{
		Type:     eventType,
		MemberID: w.MemberID,
		RefID:    w.ID,
		Amount:   w.Amount,
		Month:    w.Month,
	})
	return w, nil
}

// Get retrieves a request.
func (s *WithdrawalService) Get(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	return s.store.GetWithdrawal(ctx, id)
}

// ListByMember returns a member's requests, newest first.
func (s *WithdrawalService) ListByMember(ctx context.Context, memberID string) ([]*models.WithdrawalRequest, error) {
	return s.store.ListWithdrawalsByMember(ctx, memberID)
}
