package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Organization is one cabin-sharing group of families
type Organization struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	TelegramChatID *int64    `json:"telegram_chat_id" db:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// FinancialMethod selects how a stay is billed
type FinancialMethod string

const (
	// FinancialMethodPerPersonPerNight bills every guest night at the nightly rate.
	FinancialMethodPerPersonPerNight FinancialMethod = "per-person-per-night"
	// FinancialMethodPerNight bills the whole cabin per night regardless of guests.
	FinancialMethodPerNight FinancialMethod = "per-night"
	// FinancialMethodNone disables use fees.
	FinancialMethodNone FinancialMethod = "none"
)

// ReservationSettings holds the organization's billing configuration
type ReservationSettings struct {
	OrganizationID  int64           `json:"organization_id" db:"organization_id"`
	FinancialMethod FinancialMethod `json:"financial_method" db:"financial_method"`
	NightlyRate     decimal.Decimal `json:"nightly_rate" db:"nightly_rate"`
	// TaxRate is a percentage, e.g. 8.5 for 8.5%.
	TaxRate   decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// PerDiemRate returns the flat per-guest-per-night figure used to split costs.
func (s *ReservationSettings) PerDiemRate() decimal.Decimal {
	if s == nil || s.FinancialMethod == FinancialMethodNone {
		return decimal.Zero
	}
	return s.NightlyRate
}

// FamilyGroup is a family that shares the property within an organization
type FamilyGroup struct {
	ID             int64     `json:"id" db:"id"`
	OrganizationID int64     `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
