package postgres

import (
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
)

// DATE columns are bound as YYYY-MM-DD text so the session time zone cannot
// move a calendar day.
func dateArg(t time.Time) string {
	return daterange.Format(t)
}

func nullDateArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return daterange.Format(*t)
}
