package service

import (
	"context"
	"log/slog"

	"github.com/adeyemio/coopledger/internal/events"
	"github.com/adeyemio/coopledger/internal/models"
	"github.com/adeyemio/coopledger/internal/storage"
)

// SettlementService finalizes calendar months. Settlement is always an
// explicit admin action, never time-driven.
type SettlementService struct {
	store   storage.Store
	emitter events.Emitter
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(store storage.Store, emitter events.Emitter) *SettlementService {
	return &SettlementService{store: store, emitter: emitter}
}

// SettleMonth freezes a month: the store runs the whole cascade (bonus
// share approval, withdrawal completion, contribution settling) in one
// transaction, so either the month settles completely or not at all.
func (s *SettlementService) SettleMonth(ctx context.Context, month string) (*models.Settlement, error) {
	if !validMonth(month) {
		return nil, models.Validationf("month", "want YYYY-MM, got %q", month)
	}

	settlement, err := s.store.SettleMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "month settled",
		"month", month,
		"contributions", settlement.TotalContributions,
		"bonuses", settlement.TotalBonuses,
		"withdrawals", settlement.TotalWithdrawals)
	s.emitter.Emit(ctx, events.Event{
		Type:  events.MonthSettled,
		RefID: settlement.ID,
		Month: month,
	})
	return settlement, nil
}

// IsSettled reports whether a month is already settled.
func (s *SettlementService) IsSettled(ctx context.Context, month string) (bool, error) {
	if !validMonth(month) {
		return false, models.Validationf("month", "want YYYY-MM, got %q", month)
	}
	return s.store.IsMonthSettled(ctx, month)
}
