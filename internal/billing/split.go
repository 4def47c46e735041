// Package billing prices daily guest occupancy and splits the cost of a stay
// between the family group that booked it and the groups it is shared with.
package billing

import (
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals is the priced occupancy of one stay
type Totals struct {
	// Days has one priced entry for every night of the stay, in date order.
	// Nights missing from the input are priced with zero guests.
	Days           models.DailyOccupancy
	PerDiem        decimal.Decimal
	SourceTotal    decimal.Decimal
	RecipientTotal decimal.Decimal
	GuestNights    int
}

// Combined returns the source and recipient totals together
func (t Totals) Combined() decimal.Decimal {
	return t.SourceTotal.Add(t.RecipientTotal)
}

// Calculate prices every night of span at perDiem per guest. Entries outside
// span are ignored; callers validate them first.
func Calculate(span daterange.Range, entries models.DailyOccupancy, perDiem decimal.Decimal) Totals {
	byDate := entries.ByDate()
	totals := Totals{
		PerDiem:        perDiem,
		SourceTotal:    decimal.Zero,
		RecipientTotal: decimal.Zero,
	}

	for _, day := range span.Days() {
		in := byDate[daterange.Format(day)]
		entry := models.DailyOccupancyEntry{
			Date:            day,
			SourceGuests:    in.SourceGuests,
			RecipientGuests: in.RecipientGuests,
			PerDiem:         perDiem,
			SourceCost:      perDiem.Mul(decimal.NewFromInt(int64(in.SourceGuests))),
			RecipientCost:   perDiem.Mul(decimal.NewFromInt(int64(in.RecipientGuests))),
		}
		totals.Days = append(totals.Days, entry)
		totals.SourceTotal = totals.SourceTotal.Add(entry.SourceCost)
		totals.RecipientTotal = totals.RecipientTotal.Add(entry.RecipientCost)
		totals.GuestNights += entry.TotalGuests()
	}

	return totals
}

// Subtotal returns the pre-tax amount a payment row with the given role owes.
// Split rows are always priced per guest night; a full row follows the
// organization's financial method.
func Subtotal(role models.SplitRole, totals Totals, settings *models.ReservationSettings, nights int) decimal.Decimal {
	switch role {
	case models.SplitRoleSource:
		return totals.SourceTotal
	case models.SplitRoleRecipient:
		return totals.RecipientTotal
	}

	if settings == nil {
		return totals.Combined()
	}
	switch settings.FinancialMethod {
	case models.FinancialMethodNone:
		return decimal.Zero
	case models.FinancialMethodPerNight:
		return settings.NightlyRate.Mul(decimal.NewFromInt(int64(nights)))
	default:
		return totals.Combined()
	}
}

// WithTax applies the percentage tax rate and rounds to cents
func WithTax(subtotal, taxRate decimal.Decimal) decimal.Decimal {
	if taxRate.IsPositive() {
		subtotal = subtotal.Add(subtotal.Mul(taxRate).Div(hundred))
	}
	return subtotal.Round(2)
}

// Amount returns the taxed amount a payment row with the given role owes
func Amount(role models.SplitRole, totals Totals, settings *models.ReservationSettings, nights int) decimal.Decimal {
	taxRate := decimal.Zero
	if settings != nil {
		taxRate = settings.TaxRate
	}
	return WithTax(Subtotal(role, totals, settings, nights), taxRate)
}
