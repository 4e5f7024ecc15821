package service

import (
	"context"
	"log/slog"

	"github.com/adeyemio/coopledger/internal/events"
	"github.com/adeyemio/coopledger/internal/ledger"
	"github.com/adeyemio/coopledger/internal/models"
	"github.com/adeyemio/coopledger/internal/storage"
)

// DividendService runs admin-triggered pro-rata profit distributions over
// the eligible-member snapshot.
type DividendService struct {
	store   storage.Store
	emitter events.Emitter
}

// NewDividendService creates a DividendService.
func NewDividendService(store storage.Store, emitter events.Emitter) *DividendService {
	return &DividendService{store: store, emitter: emitter}
}

// Run distributes profit pro-rata over the current eligible snapshot.
// The batch write is all-or-nothing: an empty snapshot aborts with
// ErrNoEligibleMembers and zero writes, and any row failure rolls the
// whole batch back.
func (s *DividendService) Run(ctx context.Context, profit int64) (*models.DividendDistribution, error) {
	snapshot, err := s.store.ListEligibleCapital(ctx)
	if err != nil {
		return nil, err
	}

	shares, pool, err := ledger.SplitDividend(profit, snapshot)
	if err != nil {
		return nil, err
	}

	batch := &models.DividendDistribution{
		TotalProfit:      profit,
		TotalCapitalPool: pool,
		EligibleCount:    len(shares),
	}
	for _, share := range shares {
		batch.Dividends = append(batch.Dividends, models.Dividend{
			MemberID:        share.MemberID,
			Amount:          share.Amount,
			PercentageBps:   share.PercentageBps,
			CapitalSnapshot: share.CapitalSnapshot,
		})
	}

	if err := s.store.CreateDividendDistribution(ctx, batch); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "dividend distributed",
		"distribution_id", batch.ID, "profit", profit,
		"capital_pool", pool, "eligible", len(shares))
	s.emitter.Emit(ctx, events.Event{
		Type:   events.DividendDistributed,
		RefID:  batch.ID,
		Amount: profit,
	})
	return batch, nil
}

// Get retrieves a dividend batch with its rows.
func (s *DividendService) Get(ctx context.Context, id string) (*models.DividendDistribution, error) {
	return s.store.GetDividendDistribution(ctx, id)
}

// Delete removes an erroneous batch as a whole, reversing its credits.
func (s *DividendService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteDividendDistribution(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "dividend distribution deleted", "distribution_id", id)
	return nil
}
