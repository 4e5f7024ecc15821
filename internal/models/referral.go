package models

// MaxChildren caps the fan-out of every referral tree node.
const MaxChildren = 3

// CompanyRootID is the synthetic member id at the root of the referral
// tree. It is not a real member; undistributed bonus shares are credited
// against it as the company share.
const CompanyRootID = "company"

// ReferralNode is one row of the flat, index-addressed referral tree.
// Created once per member at first approved registration; immutable after
// that except for ChildrenCount.
type ReferralNode struct {
	// MemberID identifies the member occupying this node.
	MemberID string

	// ParentID is the node this member hangs under. The company root has
	// an empty ParentID.
	ParentID string

	// Level is the depth below the company root (root = 0).
	Level int

	// Position is which child slot under the parent this node occupies
	// (0, 1, or 2).
	Position int

	// ChildrenCount is how many of the three slots under this node are
	// taken. Never exceeds MaxChildren.
	ChildrenCount int

	// CreatedAt is the Unix timestamp when the node was placed.
	CreatedAt int64
}
