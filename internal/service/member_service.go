// Package service contains the orchestration layer of the ledger core:
// input validation, calls into the pure ledger arithmetic, storage writes
// and event emission. One service per component.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adeyemio/coopledger/internal/models"
	"github.com/adeyemio/coopledger/internal/storage"
)

// MemberService handles member registration intake and balance reads.
// Registration decisions are owned by an external process; this service
// only records the result and places approved members in the referral
// tree.
type MemberService struct {
	store        storage.Store
	maxTreeDepth int
}

// NewMemberService creates a MemberService. maxTreeDepth bounds the
// breadth-first spillover search during referral placement.
func NewMemberService(store storage.Store, maxTreeDepth int) *MemberService {
	return &MemberService{store: store, maxTreeDepth: maxTreeDepth}
}

// Register records a member and, for approved registrations, places them
// under their referrer (or the company root when unreferred).
func (s *MemberService) Register(ctx context.Context, member *models.Member) error {
	if member.Name == "" {
		return models.Validationf("name", "must not be empty")
	}
	if member.Email == "" {
		return models.Validationf("email", "must not be empty")
	}
	switch member.Type {
	case models.MemberContributor, models.MemberActing:
	default:
		return models.Validationf("member_type", "unknown type %q", member.Type)
	}
	if member.Status == "" {
		member.Status = models.RegistrationApproved
	}

	if err := s.store.CreateMember(ctx, member, s.maxTreeDepth); err != nil {
		return fmt.Errorf("register member: %w", err)
	}

	slog.InfoContext(ctx, "member registered",
		"member_id", member.ID, "type", member.Type, "referrer_id", member.ReferrerID)
	return nil
}

// Balance returns a member's full balance record.
func (s *MemberService) Balance(ctx context.Context, memberID string) (*models.Balance, error) {
	return s.store.GetBalance(ctx, memberID)
}

// AvailableBalance returns the withdrawable amount of one bucket.
func (s *MemberService) AvailableBalance(ctx context.Context, memberID string, bucket models.Bucket) (int64, error) {
	if !bucket.Valid() {
		return 0, models.Validationf("bucket", "unknown bucket %q", bucket)
	}
	return s.store.AvailableBalance(ctx, memberID, bucket)
}

// Ancestors returns a member's referral chain up to maxLevels.
func (s *MemberService) Ancestors(ctx context.Context, memberID string, maxLevels int) ([]models.ReferralNode, error) {
	if maxLevels <= 0 {
		return nil, models.Validationf("max_levels", "must be positive, got %d", maxLevels)
	}
	return s.store.AncestorsOf(ctx, memberID, maxLevels)
}

// currentMonth formats now as a "YYYY-MM" calendar month.
func currentMonth() string {
	return time.Now().UTC().Format("2006-01")
}

// validMonth reports whether month parses as "YYYY-MM".
func validMonth(month string) bool {
	_, err := time.Parse("2006-01", month)
	return err == nil
}
