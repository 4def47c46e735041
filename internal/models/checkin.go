package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// dailyOccupancyKey is the checklist response key holding per-day guest counts
const dailyOccupancyKey = "dailyOccupancy"

// CheckinSession is a checklist filled in on a given day of a stay
type CheckinSession struct {
	ID                 int64              `json:"id" db:"id"`
	OrganizationID     int64              `json:"organization_id" db:"organization_id"`
	FamilyGroup        string             `json:"family_group" db:"family_group"`
	CheckDate          time.Time          `json:"check_date" db:"check_date"`
	ChecklistResponses ChecklistResponses `json:"checklist_responses" db:"checklist_responses"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// ChecklistResponses is the free-form JSON object of a check-in session.
// Keys other than dailyOccupancy are carried through untouched.
type ChecklistResponses map[string]json.RawMessage

// DailyOccupancy decodes the YYYY-MM-DD -> guests map
func (c ChecklistResponses) DailyOccupancy() (map[string]int, error) {
	out := map[string]int{}
	raw, ok := c[dailyOccupancyKey]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid dailyOccupancy in checklist responses: %w", err)
	}
	return out, nil
}

// SetDailyOccupancy replaces the YYYY-MM-DD -> guests map
func (c ChecklistResponses) SetDailyOccupancy(occupancy map[string]int) error {
	raw, err := json.Marshal(occupancy)
	if err != nil {
		return err
	}
	c[dailyOccupancyKey] = raw
	return nil
}

// Value implements driver.Valuer
func (c ChecklistResponses) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]json.RawMessage(c))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (c *ChecklistResponses) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = ChecklistResponses{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("checklist_responses: unsupported column type")
	}
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = m
	return nil
}
