package models

import (
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/shopspring/decimal"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled:
		return true
	}
	return false
}

// Reservation is one family group's stay at a property. EndDate is the
// checkout day and is not a night of the stay.
type Reservation struct {
	ID             int64             `json:"id" db:"id"`
	OrganizationID int64             `json:"organization_id" db:"organization_id"`
	FamilyGroup    string            `json:"family_group" db:"family_group"`
	PropertyName   string            `json:"property_name" db:"property_name"`
	StartDate      time.Time         `json:"start_date" db:"start_date"`
	EndDate        time.Time         `json:"end_date" db:"end_date"`
	GuestCount     int               `json:"guest_count" db:"guest_count"`
	Status         ReservationStatus `json:"status" db:"status"`

	// Set when the reservation is one slice of a multi-period booking.
	TimePeriodNumber   *int       `json:"time_period_number,omitempty" db:"time_period_number"`
	AllocatedStartDate *time.Time `json:"allocated_start_date,omitempty" db:"allocated_start_date"`
	AllocatedEndDate   *time.Time `json:"allocated_end_date,omitempty" db:"allocated_end_date"`

	TotalCost      decimal.NullDecimal `json:"total_cost" db:"total_cost"`
	ReminderSentAt *time.Time          `json:"reminder_sent_at,omitempty" db:"reminder_sent_at"`
	CreatedByID    *int64              `json:"created_by_id,omitempty" db:"created_by_id"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
}

// Range returns the stay as a half-open date range
func (r *Reservation) Range() daterange.Range {
	return daterange.New(r.StartDate, r.EndDate)
}

// Nights returns the number of nights in the stay
func (r *Reservation) Nights() int {
	return r.Range().Nights()
}

// IsConfirmed returns true if the reservation blocks the calendar
func (r *Reservation) IsConfirmed() bool {
	return r.Status == ReservationStatusConfirmed
}
