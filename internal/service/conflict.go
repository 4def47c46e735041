package service

import (
	"context"
	"fmt"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/metrics"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultAlternativeSearchDays is how far either side of the preferred
	// dates an alternative search looks.
	DefaultAlternativeSearchDays = 14
	// MaxAlternatives caps the number of suggested ranges.
	MaxAlternatives = 5
)

// ConflictQuery describes a candidate stay to check against the calendar
type ConflictQuery struct {
	OrganizationID int64
	Range          daterange.Range
	// PropertyName restricts the check to one property. Empty checks every
	// reservation of the organization.
	PropertyName string
	// ExcludeReservationID skips the reservation being edited.
	ExcludeReservationID *int64
}

// ConflictCheckResult lists the confirmed stays a candidate collides with.
// When CheckFailed is set the reservations could not be loaded and an empty
// Conflicts slice means nothing; callers book anyway and surface Warnings.
type ConflictCheckResult struct {
	Conflicts     []*models.Reservation `json:"conflicts"`
	Warnings      []string              `json:"warnings"`
	CheckFailed   bool                  `json:"check_failed"`
	FailureReason string                `json:"failure_reason,omitempty"`
}

// HasConflicts returns true if at least one confirmed stay collides
func (r ConflictCheckResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// ValidationRequest is a candidate stay plus the booking context it comes from
type ValidationRequest struct {
	ConflictQuery
	FamilyGroup   string
	EditMode      bool
	AdminOverride bool
}

// ValidationResult carries user-facing validation messages. Warnings never
// affect IsValid.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AlternativeQuery asks for free ranges near a preferred stay
type AlternativeQuery struct {
	ConflictQuery
	DaysToSearch int
}

// ConflictDetector decides whether a stay may be booked and suggests
// alternatives when it may not.
type ConflictDetector struct {
	reservations repository.ReservationRepository
	logger       *logrus.Logger
	opts         Options
}

// NewConflictDetector creates a ConflictDetector reading confirmed reservations from repo
func NewConflictDetector(repo repository.ReservationRepository, logger *logrus.Logger, opts Options) *ConflictDetector {
	return &ConflictDetector{
		reservations: repo,
		logger:       logger,
		opts:         opts.withDefaults(),
	}
}

// CheckOverlap reports whether two stays collide under the noon turnover rule
func (d *ConflictDetector) CheckOverlap(a, b daterange.Range) bool {
	return daterange.Overlaps(a, b)
}

// DetectConflicts loads the organization's confirmed reservations and returns
// those overlapping the candidate range. A store failure is reported through
// CheckFailed instead of an error.
func (d *ConflictDetector) DetectConflicts(ctx context.Context, q ConflictQuery) ConflictCheckResult {
	result := ConflictCheckResult{
		Conflicts: []*models.Reservation{},
		Warnings:  []string{},
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.StoreTimeout)
	defer cancel()

	filters := repository.ConflictFilters{ExcludeReservationID: q.ExcludeReservationID}
	if q.PropertyName != "" {
		property := q.PropertyName
		filters.PropertyName = &property
	}

	existing, err := d.reservations.ListConfirmed(ctx, q.OrganizationID, filters)
	if err != nil {
		d.logger.WithFields(logrus.Fields{
			"organization_id": q.OrganizationID,
			"range":           q.Range.String(),
		}).WithError(err).Warn("Conflict check failed, allowing booking")
		metrics.ConflictChecks.WithLabelValues("check_failed").Inc()

		result.CheckFailed = true
		result.FailureReason = err.Error()
		result.Warnings = append(result.Warnings, "Unable to check for conflicts, please verify availability manually")
		return result
	}

	for _, r := range existing {
		if q.ExcludeReservationID != nil && r.ID == *q.ExcludeReservationID {
			continue
		}
		other := r.Range()
		if d.CheckOverlap(q.Range, other) {
			result.Conflicts = append(result.Conflicts, r)
			continue
		}
		if !daterange.Turnover(q.Range, other) {
			continue
		}
		if daterange.Day(other.End).Equal(daterange.Day(q.Range.Start)) {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Same-day transition: %s checks out on %s", r.FamilyGroup, daterange.Format(other.End)))
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Same-day transition: %s checks in on %s", r.FamilyGroup, daterange.Format(other.Start)))
		}
	}

	if result.HasConflicts() {
		metrics.ConflictChecks.WithLabelValues("conflict").Inc()
	} else {
		metrics.ConflictChecks.WithLabelValues("clear").Inc()
	}
	return result
}

// ValidateReservationDates runs the booking rules in order: date ordering,
// past dates, then conflicts. Problems come back as messages, never as errors.
func (d *ConflictDetector) ValidateReservationDates(ctx context.Context, req ValidationRequest) ValidationResult {
	result := ValidationResult{Errors: []string{}, Warnings: []string{}}

	if !req.Range.Valid() {
		result.Errors = append(result.Errors, "End date must be after start date")
		return result
	}

	if !req.AdminOverride {
		today := daterange.Day(d.opts.Now())
		if req.EditMode {
			if daterange.Day(req.Range.End).Before(today) {
				result.Errors = append(result.Errors, "End date cannot be in the past")
			}
		} else if daterange.Day(req.Range.Start).Before(today) {
			result.Errors = append(result.Errors, "Start date cannot be in the past")
		}
	}

	check := d.DetectConflicts(ctx, req.ConflictQuery)
	for _, c := range check.Conflicts {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Conflicts with %s's reservation from %s to %s",
			c.FamilyGroup, daterange.Format(c.StartDate), daterange.Format(c.EndDate)))
	}
	result.Warnings = append(result.Warnings, check.Warnings...)

	result.IsValid = len(result.Errors) == 0
	return result
}

// SuggestAlternativeDates looks for free ranges of the same length around the
// preferred one. At each offset it tries the earlier window before the later
// one, so results are interleaved rather than sorted by distance. Windows
// starting before today and windows whose check failed are skipped.
func (d *ConflictDetector) SuggestAlternativeDates(ctx context.Context, q AlternativeQuery) []daterange.Range {
	alternatives := []daterange.Range{}

	nights := q.Range.Nights()
	if nights == 0 {
		return alternatives
	}
	start := daterange.Day(q.Range.Start)
	preferred := daterange.New(start, start.AddDate(0, 0, nights))

	days := q.DaysToSearch
	if days <= 0 {
		days = d.opts.AlternativeSearchDays
	}
	today := daterange.Day(d.opts.Now())

	checks := 0
	defer func() { metrics.AlternativeSearches.Observe(float64(checks)) }()

	for offset := 1; offset <= days; offset++ {
		for _, candidate := range []daterange.Range{preferred.Shift(-offset), preferred.Shift(offset)} {
			if candidate.Start.Before(today) {
				continue
			}
			if ctx.Err() != nil {
				return alternatives
			}

			query := q.ConflictQuery
			query.Range = candidate
			checks++
			check := d.DetectConflicts(ctx, query)
			if check.CheckFailed || check.HasConflicts() {
				continue
			}

			alternatives = append(alternatives, candidate)
			if len(alternatives) >= MaxAlternatives {
				return alternatives
			}
		}
	}

	return alternatives
}
