package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitRole says which share of a reservation a payment row bills
type SplitRole string

const (
	// SplitRoleFull bills the combined occupancy of the stay.
	SplitRoleFull SplitRole = "full"
	// SplitRoleSource bills the guests of the family group that booked.
	SplitRoleSource SplitRole = "source"
	// SplitRoleRecipient bills the guests of a group the cost was split with.
	SplitRoleRecipient SplitRole = "recipient"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment is one family group's share of a reservation's cost
type Payment struct {
	ID             int64           `json:"id" db:"id"`
	ReservationID  int64           `json:"reservation_id" db:"reservation_id"`
	OrganizationID int64           `json:"organization_id" db:"organization_id"`
	FamilyGroup    string          `json:"family_group" db:"family_group"`
	SplitRole      SplitRole       `json:"split_role" db:"split_role"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	AmountPaid     decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	DailyOccupancy DailyOccupancy  `json:"daily_occupancy" db:"daily_occupancy"`
	BillingLocked  bool            `json:"billing_locked" db:"billing_locked"`
	Status         PaymentStatus   `json:"status" db:"status"`
	DueDate        *time.Time      `json:"due_date,omitempty" db:"due_date"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// IsLocked returns true once billing is frozen. Any recorded payment locks
// the row even if the flag has not been written yet.
func (p *Payment) IsLocked() bool {
	return p.BillingLocked || p.AmountPaid.IsPositive()
}

// Balance returns what is still owed
func (p *Payment) Balance() decimal.Decimal {
	return p.Amount.Sub(p.AmountPaid)
}

// PaymentSet is every payment row of one reservation
type PaymentSet []*Payment

// Partition splits the set into rows whose amount may be recalculated and
// rows that are locked.
func (s PaymentSet) Partition() (unlocked, locked PaymentSet) {
	for _, p := range s {
		if p.IsLocked() {
			locked = append(locked, p)
		} else {
			unlocked = append(unlocked, p)
		}
	}
	return unlocked, locked
}

// AnyLocked reports whether at least one row is locked
func (s PaymentSet) AnyLocked() bool {
	_, locked := s.Partition()
	return len(locked) > 0
}

// Total sums the amounts of every row
func (s PaymentSet) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s {
		total = total.Add(p.Amount)
	}
	return total
}

// ByRole returns the first row with the given role, or nil
func (s PaymentSet) ByRole(role SplitRole) *Payment {
	for _, p := range s {
		if p.SplitRole == role {
			return p
		}
	}
	return nil
}
