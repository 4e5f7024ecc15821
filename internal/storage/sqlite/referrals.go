package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adeyemio/coopledger/internal/models"
)

// placeReferralNode attaches a new member under the referrer, or — when
// the referrer's three slots are taken — under the first node found by a
// breadth-first search from the referrer with a free slot. The slot claim
// is a compare-and-set on children_count, so two concurrent placements
// can never both take the last slot of a parent.
//
// The search gives up after maxDepth levels below the referrer and
// returns ErrTreeFull.
func placeReferralNode(ctx context.Context, tx *sql.Tx, memberID, referrerID string, maxDepth int) (*models.ReferralNode, error) {
	frontier := []string{referrerID}
	for depth := 0; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, candidate := range frontier {
			res, err := tx.ExecContext(ctx,
				"UPDATE referral_nodes SET children_count = children_count + 1 WHERE member_id = ? AND children_count < ?",
				candidate, models.MaxChildren,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to claim child slot: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return nil, fmt.Errorf("failed to read claim result: %w", err)
			}
			if n == 1 {
				return insertChildNode(ctx, tx, memberID, candidate)
			}

			children, err := childIDs(ctx, tx, candidate)
			if err != nil {
				return nil, err
			}
			next = append(next, children...)
		}
		frontier = next
	}
	return nil, models.ErrTreeFull
}

// insertChildNode writes the node row under a parent whose slot was just
// claimed. The parent's incremented children_count tells us which
// position the new node takes.
func insertChildNode(ctx context.Context, tx *sql.Tx, memberID, parentID string) (*models.ReferralNode, error) {
	var parentLevel, count int
	err := tx.QueryRowContext(ctx,
		"SELECT level, children_count FROM referral_nodes WHERE member_id = ?", parentID,
	).Scan(&parentLevel, &count)
	if err != nil {
		return nil, fmt.Errorf("failed to read parent node: %w", err)
	}

	node := &models.ReferralNode{
		MemberID:  memberID,
		ParentID:  parentID,
		Level:     parentLevel + 1,
		Position:  count - 1,
		CreatedAt: time.Now().Unix(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO referral_nodes (member_id, parent_id, level, position, children_count, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		node.MemberID, node.ParentID, node.Level, node.Position, node.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert referral node: %w", err)
	}
	return node, nil
}

// childIDs returns a node's children in position order, for the
// breadth-first frontier.
func childIDs(ctx context.Context, q querier, parentID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT member_id FROM referral_nodes WHERE parent_id = ? ORDER BY position", parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate children: %w", err)
	}
	return ids, nil
}

// GetReferralNode retrieves a member's tree node.
func (s *SQLiteStore) GetReferralNode(ctx context.Context, memberID string) (*models.ReferralNode, error) {
	return getReferralNode(ctx, s.db, memberID)
}

func getReferralNode(ctx context.Context, q querier, memberID string) (*models.ReferralNode, error) {
	node := &models.ReferralNode{}
	err := q.QueryRowContext(ctx,
		`SELECT member_id, parent_id, level, position, children_count, created_at
		 FROM referral_nodes WHERE member_id = ?`, memberID,
	).Scan(&node.MemberID, &node.ParentID, &node.Level, &node.Position,
		&node.ChildrenCount, &node.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("referral node for %s: %w", memberID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral node: %w", err)
	}
	return node, nil
}

// AncestorsOf returns the chain from immediate parent up toward the
// company root, at most maxLevels long. The company root itself is not
// included.
func (s *SQLiteStore) AncestorsOf(ctx context.Context, memberID string, maxLevels int) ([]models.ReferralNode, error) {
	return ancestorsOf(ctx, s.db, memberID, maxLevels)
}

func ancestorsOf(ctx context.Context, q querier, memberID string, maxLevels int) ([]models.ReferralNode, error) {
	node, err := getReferralNode(ctx, q, memberID)
	if err != nil {
		return nil, err
	}

	var chain []models.ReferralNode
	current := node.ParentID
	for len(chain) < maxLevels && current != "" && current != models.CompanyRootID {
		parent, err := getReferralNode(ctx, q, current)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *parent)
		current = parent.ParentID
	}
	return chain, nil
}
