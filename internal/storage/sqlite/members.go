package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adeyemio/coopledger/internal/models"
)

// CreateMember inserts a member together with their zeroed balance row
// and, for approved registrations, their referral tree placement — all in
// one transaction.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member, maxTreeDepth int) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO members (id, name, email, member_type, status, referrer_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.Name, member.Email, string(member.Type),
		string(member.Status), member.ReferrerID, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO balances (member_id, updated_at) VALUES (?, ?)",
		member.ID, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert balance: %w", err)
	}

	// Tree placement happens only for approved registrations; a member
	// approved later gets placed by the registration process re-calling
	// with the approved record.
	if member.Status == models.RegistrationApproved {
		referrer := member.ReferrerID
		if referrer == "" {
			referrer = models.CompanyRootID
		}
		if _, err := placeReferralNode(ctx, tx, member.ID, referrer, maxTreeDepth); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	member := &models.Member{}
	var referrer sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, member_type, status, referrer_id, created_at
		 FROM members WHERE id = ?`, memberID,
	).Scan(&member.ID, &member.Name, &member.Email, (*string)(&member.Type),
		(*string)(&member.Status), &referrer, &member.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s: %w", memberID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if referrer.Valid {
		member.ReferrerID = referrer.String
	}
	return member, nil
}
