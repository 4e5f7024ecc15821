package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for balance rules, distribution runs and settlement.
// Services wrap these with context; the API layer maps them to status
// codes with errors.Is.
var (
	// ErrInsufficientBalance: requested amount exceeds the available
	// (raw minus reserved) balance of the bucket.
	ErrInsufficientBalance = errors.New("insufficient available balance")

	// ErrBelowMinimumCapital: a capital withdrawal would take the raw
	// capital below the 50,000-unit floor.
	ErrBelowMinimumCapital = errors.New("capital balance may not drop below the minimum")

	// ErrBelowMinimumThreshold: dividend/bonus withdrawals must be at
	// least 1,000 units.
	ErrBelowMinimumThreshold = errors.New("amount below minimum withdrawal threshold")

	// ErrIneligibleMember: the member has not contributed long enough to
	// withdraw from this bucket.
	ErrIneligibleMember = errors.New("member not eligible for this operation")

	// ErrTreeFull: no referral node within the configured depth has a
	// free child slot.
	ErrTreeFull = errors.New("referral tree has no free slot within allowed depth")

	// ErrDuplicateDistribution: a bonus batch already exists for the
	// source payment. The bonus engine swallows this and returns the
	// existing batch; it never reaches callers on the happy path.
	ErrDuplicateDistribution = errors.New("distribution already exists for source payment")

	// ErrNoEligibleMembers: a dividend run found an empty eligible set.
	ErrNoEligibleMembers = errors.New("no members eligible for dividend distribution")

	// ErrMonthAlreadySettled: the targeted month has been settled and
	// refuses further mutation.
	ErrMonthAlreadySettled = errors.New("month already settled")

	// ErrBatchWriteFailed: a multi-row batch write failed and was rolled
	// back; no partial distribution is visible.
	ErrBatchWriteFailed = errors.New("batch write failed")

	// ErrNotFound: the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition: the withdrawal (or payment) is not in a
	// state that permits the requested transition.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ValidationError reports a malformed input: non-positive amount, unknown
// bucket or breakdown, bad month string.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
