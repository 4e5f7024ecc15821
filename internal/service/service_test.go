package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adeyemio/coopledger/internal/events"
	"github.com/adeyemio/coopledger/internal/models"
	"github.com/adeyemio/coopledger/internal/storage"
	"github.com/adeyemio/coopledger/internal/storage/sqlite"
)

const (
	testActingAmount int64 = 10_000
	testFee          int64 = 500
	testReserve      int64 = 200
	testMaxDepth           = 10
	testTreeDepth          = 12
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "coopledger-service-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func registerMember(t *testing.T, members *MemberService, name string, memberType models.MemberType, referrerID string) *models.Member {
	t.Helper()
	m := &models.Member{
		Name:       name,
		Email:      name + "@coop.test",
		Type:       memberType,
		ReferrerID: referrerID,
	}
	if err := members.Register(context.Background(), m); err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return m
}

// fund pushes a member past the dividend/withdrawal gates: three approved
// all-capital contributions in distinct months.
func fund(t *testing.T, contributions *ContributionService, memberID string, amount int64) {
	t.Helper()
	ctx := context.Background()
	for _, month := range []string{"2024-01", "2024-02", "2024-03"} {
		c, err := contributions.Submit(ctx, memberID, amount, models.Breakdown100Capital, month, "")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if _, err := contributions.Approve(ctx, c.ID); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
	}
}

func TestMemberServiceValidation(t *testing.T) {
	store := newTestStore(t)
	members := NewMemberService(store, testTreeDepth)
	ctx := context.Background()

	tests := []struct {
		name   string
		member *models.Member
	}{
		{"missing name", &models.Member{Email: "a@b.c", Type: models.MemberContributor}},
		{"missing email", &models.Member{Name: "a", Type: models.MemberContributor}},
		{"unknown type", &models.Member{Name: "a", Email: "a@b.c", Type: "observer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := members.Register(ctx, tt.member)
			if !models.IsValidation(err) {
				t.Errorf("Register error = %v, want validation error", err)
			}
		})
	}

	m := registerMember(t, members, "valid", models.MemberContributor, "")
	if m.Status != models.RegistrationApproved {
		t.Errorf("default status = %s, want approved", m.Status)
	}
	if _, err := members.Ancestors(ctx, m.ID, 0); !models.IsValidation(err) {
		t.Errorf("Ancestors(0) error = %v, want validation error", err)
	}
}

func TestContributionService(t *testing.T) {
	store := newTestStore(t)
	emitter := events.LogEmitter{}
	members := NewMemberService(store, testTreeDepth)
	contributions := NewContributionService(store, emitter, testActingAmount)
	ctx := context.Background()

	t.Run("acting member pays the fixed amount", func(t *testing.T) {
		m := registerMember(t, members, "actor", models.MemberActing, "")

		c, err := contributions.Submit(ctx, m.ID, 0, "", "2024-01", "")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if c.Amount != testActingAmount {
			t.Errorf("amount = %d, want fixed %d", c.Amount, testActingAmount)
		}
		if c.Breakdown != models.Breakdown100Capital {
			t.Errorf("breakdown = %s, want 100_capital", c.Breakdown)
		}

		_, err = contributions.Submit(ctx, m.ID, 5_000, models.Breakdown8020, "2024-01", "")
		if !models.IsValidation(err) {
			t.Errorf("custom acting amount error = %v, want validation error", err)
		}

		if _, err := contributions.Approve(ctx, c.ID); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		balance, err := members.Balance(ctx, m.ID)
		if err != nil {
			t.Fatalf("Balance failed: %v", err)
		}
		if balance.Capital != testActingAmount || balance.Savings != 0 {
			t.Errorf("balance = capital %d savings %d, want %d/0",
				balance.Capital, balance.Savings, testActingAmount)
		}
	})

	t.Run("contributor input validation", func(t *testing.T) {
		m := registerMember(t, members, "strict", models.MemberContributor, "")

		if _, err := contributions.Submit(ctx, m.ID, -5, models.Breakdown8020, "2024-01", ""); !models.IsValidation(err) {
			t.Errorf("negative amount error = %v, want validation error", err)
		}
		if _, err := contributions.Submit(ctx, m.ID, 1_000, "50_50", "2024-01", ""); !models.IsValidation(err) {
			t.Errorf("unknown breakdown error = %v, want validation error", err)
		}
		if _, err := contributions.Submit(ctx, m.ID, 1_000, models.Breakdown8020, "Jan 2024", ""); !models.IsValidation(err) {
			t.Errorf("malformed month error = %v, want validation error", err)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := contributions.Submit(ctx, "no-such-member", 1_000, models.Breakdown8020, "2024-01", "")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Submit error = %v, want ErrNotFound", err)
		}
	})
}

func TestBonusServiceIdempotentApproval(t *testing.T) {
	store := newTestStore(t)
	emitter := events.LogEmitter{}
	members := NewMemberService(store, testTreeDepth)
	bonuses := NewBonusService(store, emitter, testFee, testReserve, testMaxDepth)
	ctx := context.Background()

	grand := registerMember(t, members, "grand", models.MemberContributor, "")
	parent := registerMember(t, members, "parent", models.MemberContributor, grand.ID)
	payer := registerMember(t, members, "payer", models.MemberContributor, parent.ID)

	payment, err := bonuses.RecordPayment(ctx, payer.ID, "2024-05", "receipt-1")
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if payment.Amount != testFee {
		t.Errorf("payment amount = %d, want fixed fee %d", payment.Amount, testFee)
	}

	first, err := bonuses.ApprovePayment(ctx, payment.ID)
	if err != nil {
		t.Fatalf("ApprovePayment failed: %v", err)
	}
	if first.Pool != testFee-testReserve {
		t.Errorf("pool = %d, want %d", first.Pool, testFee-testReserve)
	}
	if first.ParticipantCount != 2 {
		t.Errorf("participants = %d, want 2", first.ParticipantCount)
	}

	// A retried approval must return the same batch without paying twice.
	second, err := bonuses.ApprovePayment(ctx, payment.ID)
	if err != nil {
		t.Fatalf("repeated ApprovePayment failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeated approval batch = %s, want %s", second.ID, first.ID)
	}

	perLevel := (testFee - testReserve) / int64(testMaxDepth)
	for _, m := range []*models.Member{parent, grand} {
		balance, err := store.GetBalance(ctx, m.ID)
		if err != nil {
			t.Fatalf("GetBalance failed: %v", err)
		}
		if balance.BonusEarned != perLevel {
			t.Errorf("%s bonus = %d, want %d", m.Name, balance.BonusEarned, perLevel)
		}
	}
}

func TestDividendService(t *testing.T) {
	store := newTestStore(t)
	emitter := events.LogEmitter{}
	members := NewMemberService(store, testTreeDepth)
	contributions := NewContributionService(store, emitter, testActingAmount)
	dividends := NewDividendService(store, emitter)
	ctx := context.Background()

	if _, err := dividends.Run(ctx, 10_000); !errors.Is(err, models.ErrNoEligibleMembers) {
		t.Fatalf("Run with empty snapshot error = %v, want ErrNoEligibleMembers", err)
	}

	m := registerMember(t, members, "earner", models.MemberContributor, "")
	fund(t, contributions, m.ID, 20_000) // capital 60,000 over 3 months

	batch, err := dividends.Run(ctx, 9_999)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if batch.EligibleCount != 1 || batch.TotalCapitalPool != 60_000 {
		t.Errorf("batch = count %d pool %d, want 1/60000", batch.EligibleCount, batch.TotalCapitalPool)
	}
	if got := batch.Dividends[0].Amount; got != 9_999 {
		t.Errorf("sole dividend = %d, want the full profit 9999", got)
	}

	balance, _ := store.GetBalance(ctx, m.ID)
	if balance.DividendEarned != 9_999 {
		t.Errorf("dividend earned = %d, want 9999", balance.DividendEarned)
	}

	if err := dividends.Delete(ctx, batch.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	balance, _ = store.GetBalance(ctx, m.ID)
	if balance.DividendEarned != 0 {
		t.Errorf("dividend earned after delete = %d, want 0", balance.DividendEarned)
	}
}

func TestWithdrawalServiceLifecycle(t *testing.T) {
	store := newTestStore(t)
	emitter := events.LogEmitter{}
	members := NewMemberService(store, testTreeDepth)
	contributions := NewContributionService(store, emitter, testActingAmount)
	withdrawals := NewWithdrawalService(store, emitter)
	ctx := context.Background()

	m := registerMember(t, members, "drawer", models.MemberContributor, "")
	fund(t, contributions, m.ID, 25_000) // capital 75,000
	bank := models.BankDetails{BankName: "b", AccountName: "a", AccountNumber: "1"}

	t.Run("input validation", func(t *testing.T) {
		if _, err := withdrawals.Request(ctx, m.ID, "escrow", 1_000, bank); !models.IsValidation(err) {
			t.Errorf("unknown bucket error = %v, want validation error", err)
		}
		if _, err := withdrawals.Request(ctx, m.ID, models.BucketCapital, 0, bank); !models.IsValidation(err) {
			t.Errorf("zero amount error = %v, want validation error", err)
		}
		if _, err := withdrawals.Request(ctx, m.ID, models.BucketCapital, 1_000, models.BankDetails{}); !models.IsValidation(err) {
			t.Errorf("missing bank error = %v, want validation error", err)
		}
	})

	t.Run("request approve complete", func(t *testing.T) {
		w, err := withdrawals.Request(ctx, m.ID, models.BucketCapital, 20_000, bank)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if w.Status != models.WithdrawalPending {
			t.Errorf("status = %s, want pending", w.Status)
		}

		if _, err := withdrawals.Approve(ctx, w.ID); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		if _, err := withdrawals.Reject(ctx, w.ID); !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("Reject after approval error = %v, want ErrInvalidTransition", err)
		}
		done, err := withdrawals.Complete(ctx, w.ID)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if done.Status != models.WithdrawalCompleted {
			t.Errorf("status = %s, want completed", done.Status)
		}

		balance, _ := store.GetBalance(ctx, m.ID)
		if balance.Capital != 55_000 {
			t.Errorf("capital = %d, want 55000", balance.Capital)
		}

		list, err := withdrawals.ListByMember(ctx, m.ID)
		if err != nil {
			t.Fatalf("ListByMember failed: %v", err)
		}
		if len(list) != 1 || list[0].ID != w.ID {
			t.Errorf("list = %d requests, want just %s", len(list), w.ID)
		}
	})
}

func TestSettlementService(t *testing.T) {
	store := newTestStore(t)
	emitter := events.LogEmitter{}
	members := NewMemberService(store, testTreeDepth)
	contributions := NewContributionService(store, emitter, testActingAmount)
	settlements := NewSettlementService(store, emitter)
	ctx := context.Background()

	if _, err := settlements.SettleMonth(ctx, "202401"); !models.IsValidation(err) {
		t.Fatalf("malformed month error = %v, want validation error", err)
	}

	m := registerMember(t, members, "closer", models.MemberContributor, "")
	fund(t, contributions, m.ID, 20_000)

	settlement, err := settlements.SettleMonth(ctx, "2024-03")
	if err != nil {
		t.Fatalf("SettleMonth failed: %v", err)
	}
	if settlement.TotalContributions != 20_000 {
		t.Errorf("settled contributions = %d, want 20000", settlement.TotalContributions)
	}

	settled, err := settlements.IsSettled(ctx, "2024-03")
	if err != nil {
		t.Fatalf("IsSettled failed: %v", err)
	}
	if !settled {
		t.Error("IsSettled = false after settlement")
	}

	if _, err := settlements.SettleMonth(ctx, "2024-03"); !errors.Is(err, models.ErrMonthAlreadySettled) {
		t.Errorf("second settlement error = %v, want ErrMonthAlreadySettled", err)
	}

	// The frozen month refuses new approvals.
	c, err := contributions.Submit(ctx, m.ID, 1_000, models.Breakdown100Capital, "2024-03", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := contributions.Approve(ctx, c.ID); !errors.Is(err, models.ErrMonthAlreadySettled) {
		t.Errorf("approval in settled month error = %v, want ErrMonthAlreadySettled", err)
	}
}
