package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/shopspring/decimal"
)

// DailyOccupancyEntry records how many guests of the source and recipient
// family groups stayed on one calendar day. PerDiem and the costs are the
// values used when the entry was last priced, kept so a later rate change
// cannot silently alter a historical split.
type DailyOccupancyEntry struct {
	Date            time.Time       `json:"-"`
	SourceGuests    int             `json:"sourceGuests"`
	RecipientGuests int             `json:"recipientGuests"`
	PerDiem         decimal.Decimal `json:"perDiem"`
	SourceCost      decimal.Decimal `json:"sourceCost"`
	RecipientCost   decimal.Decimal `json:"recipientCost"`
}

type dailyOccupancyEntryJSON struct {
	Date string `json:"date"`
	entryAlias
}

type entryAlias DailyOccupancyEntry

// MarshalJSON writes the date as YYYY-MM-DD
func (e DailyOccupancyEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(dailyOccupancyEntryJSON{
		Date:       daterange.Format(e.Date),
		entryAlias: entryAlias(e),
	})
}

// UnmarshalJSON reads the YYYY-MM-DD date back
func (e *DailyOccupancyEntry) UnmarshalJSON(data []byte) error {
	var raw dailyOccupancyEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := daterange.Parse(raw.Date)
	if err != nil {
		return err
	}
	*e = DailyOccupancyEntry(raw.entryAlias)
	e.Date = date
	return nil
}

// TotalGuests returns the guests of both groups for the day
func (e DailyOccupancyEntry) TotalGuests() int {
	return e.SourceGuests + e.RecipientGuests
}

// DailyOccupancy is the ordered-by-date occupancy of one reservation, stored
// as a JSONB array.
type DailyOccupancy []DailyOccupancyEntry

// Validate checks guest counts are non-negative, every day falls inside span
// and no day appears twice.
func (o DailyOccupancy) Validate(span daterange.Range) error {
	seen := make(map[string]struct{}, len(o))
	for _, e := range o {
		key := daterange.Format(e.Date)
		if e.SourceGuests < 0 || e.RecipientGuests < 0 {
			return fmt.Errorf("negative guest count on %s", key)
		}
		if !span.Contains(e.Date) {
			return fmt.Errorf("%s is outside the stay %s", key, span)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s appears more than once", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ByDate indexes the entries by YYYY-MM-DD
func (o DailyOccupancy) ByDate() map[string]DailyOccupancyEntry {
	m := make(map[string]DailyOccupancyEntry, len(o))
	for _, e := range o {
		m[daterange.Format(e.Date)] = e
	}
	return m
}

// Value implements driver.Valuer. The JSON is returned as a string so the
// driver does not bind it as bytea.
func (o DailyOccupancy) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	data, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (o *DailyOccupancy) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*o = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("daily_occupancy: unsupported column type")
	}
	return json.Unmarshal(data, o)
}
