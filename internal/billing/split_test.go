package billing

import (
	"testing"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := daterange.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func augustStay() (daterange.Range, models.DailyOccupancy) {
	span := daterange.New(day("2024-08-01"), day("2024-08-04"))
	entries := models.DailyOccupancy{
		{Date: day("2024-08-01"), SourceGuests: 2, RecipientGuests: 1},
		{Date: day("2024-08-02"), SourceGuests: 2, RecipientGuests: 1},
		{Date: day("2024-08-03"), SourceGuests: 2, RecipientGuests: 0},
	}
	return span, entries
}

func TestCalculate_SplitsPerGuestNight(t *testing.T) {
	span, entries := augustStay()

	totals := Calculate(span, entries, decimal.NewFromInt(25))

	assert.True(t, decimal.NewFromInt(150).Equal(totals.SourceTotal), "source total %s", totals.SourceTotal)
	assert.True(t, decimal.NewFromInt(50).Equal(totals.RecipientTotal), "recipient total %s", totals.RecipientTotal)
	assert.Equal(t, 8, totals.GuestNights)
	require.Len(t, totals.Days, 3)
	for _, d := range totals.Days {
		assert.True(t, decimal.NewFromInt(25).Equal(d.PerDiem), "per diem is snapshotted on every day")
	}
	assert.True(t, decimal.NewFromInt(25).Equal(totals.Days[0].RecipientCost))
	assert.True(t, totals.Days[2].RecipientCost.IsZero())
}

func TestCalculate_MissingDaysAreZero(t *testing.T) {
	span, entries := augustStay()

	totals := Calculate(span, entries[:1], decimal.NewFromInt(10))

	require.Len(t, totals.Days, 3)
	assert.Equal(t, 0, totals.Days[1].TotalGuests())
	assert.True(t, decimal.NewFromInt(20).Equal(totals.SourceTotal))
}

func TestCalculate_ConservesTotal(t *testing.T) {
	span := daterange.New(day("2024-01-01"), day("2024-01-15"))
	rates := []decimal.Decimal{
		decimal.NewFromInt(25),
		decimal.RequireFromString("17.33"),
		decimal.RequireFromString("0.01"),
	}

	for i, rate := range rates {
		var entries models.DailyOccupancy
		for n, d := range span.Days() {
			entries = append(entries, models.DailyOccupancyEntry{
				Date:            d,
				SourceGuests:    (n*7 + i) % 5,
				RecipientGuests: (n*3 + i) % 4,
			})
		}

		totals := Calculate(span, entries, rate)

		want := rate.Mul(decimal.NewFromInt(int64(totals.GuestNights)))
		assert.True(t, want.Equal(totals.SourceTotal.Add(totals.RecipientTotal)),
			"rate %s: %s + %s != %s", rate, totals.SourceTotal, totals.RecipientTotal, want)
	}
}

func TestAmount(t *testing.T) {
	span, entries := augustStay()
	perPerson := &models.ReservationSettings{
		FinancialMethod: models.FinancialMethodPerPersonPerNight,
		NightlyRate:     decimal.NewFromInt(25),
	}
	totals := Calculate(span, entries, perPerson.PerDiemRate())

	tests := []struct {
		name     string
		role     models.SplitRole
		settings *models.ReservationSettings
		want     string
	}{
		{"full row bills combined occupancy", models.SplitRoleFull, perPerson, "200"},
		{"source row", models.SplitRoleSource, perPerson, "150"},
		{"recipient row", models.SplitRoleRecipient, perPerson, "50"},
		{"tax applied", models.SplitRoleFull, &models.ReservationSettings{
			FinancialMethod: models.FinancialMethodPerPersonPerNight,
			NightlyRate:     decimal.NewFromInt(25),
			TaxRate:         decimal.RequireFromString("8.5"),
		}, "217"},
		{"per night ignores guests", models.SplitRoleFull, &models.ReservationSettings{
			FinancialMethod: models.FinancialMethodPerNight,
			NightlyRate:     decimal.NewFromInt(120),
		}, "360"},
		{"no fees", models.SplitRoleFull, &models.ReservationSettings{
			FinancialMethod: models.FinancialMethodNone,
			NightlyRate:     decimal.NewFromInt(120),
		}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.role, totals, tt.settings, span.Nights())
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestWithTax_RoundsToCents(t *testing.T) {
	got := WithTax(decimal.RequireFromString("10.00"), decimal.RequireFromString("7.25"))
	assert.Equal(t, "10.73", got.StringFixed(2))
}
