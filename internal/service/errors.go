package service

import "errors"

var (
	// ErrNotFound is returned when a reservation, payment or family group does
	// not exist in the organization.
	ErrNotFound = errors.New("not found")

	// ErrBillingLocked is returned when a change would reprice a payment a
	// recipient has already started paying.
	ErrBillingLocked = errors.New("billing is locked")

	// ErrInvalidOccupancy is returned for negative guest counts, duplicate days
	// or days outside the stay.
	ErrInvalidOccupancy = errors.New("invalid occupancy")

	// ErrInvalidSplit is returned when a cost split request does not make sense.
	ErrInvalidSplit = errors.New("invalid cost split")

	// ErrInvalidPayment is returned for non-positive payment amounts.
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrCheckinSync is returned when payments were saved but mirroring the
	// guest counts into check-in sessions failed. Retrying is safe.
	ErrCheckinSync = errors.New("failed to sync check-in sessions")
)

// IsInputError reports whether err is caused by the caller's input and will
// not succeed on retry.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidOccupancy) ||
		errors.Is(err, ErrInvalidSplit) ||
		errors.Is(err, ErrInvalidPayment)
}
