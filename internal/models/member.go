package models

// MemberType distinguishes full contributing members from acting members.
type MemberType string

const (
	// MemberContributor is a full member contributing with an 80/20 or
	// 100%-capital breakdown and eligible for dividends once vested.
	MemberContributor MemberType = "contributor"

	// MemberActing contributes a fixed smaller amount with no split and
	// never qualifies for dividends.
	MemberActing MemberType = "acting"
)

// RegistrationStatus is the lifecycle state of a member registration.
// Registration itself is owned by an external process; the ledger only
// reads it.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
)

// Member represents a registered society member.
//
// The ledger treats members as read-only input from the registration
// process, except for the derived dividend-eligibility flag on the balance.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// Name is the member's display name.
	Name string

	// Email is the member's email address (unique).
	Email string

	// Type is contributor or acting.
	Type MemberType

	// Status is the registration status.
	Status RegistrationStatus

	// ReferrerID is the member who referred this one. Empty for members
	// placed directly under the company root.
	ReferrerID string

	// CreatedAt is the Unix timestamp when the member registered.
	CreatedAt int64
}
