package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/billing"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/metrics"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// UpdateOptions tunes an occupancy update
type UpdateOptions struct {
	// SkipBillingRecalc stores the occupancy without repricing any row.
	SkipBillingRecalc bool
	// ShowNotice announces the new billing to the organization.
	ShowNotice bool
}

// OccupancyUpdate carries new daily guest counts for one reservation
type OccupancyUpdate struct {
	OrganizationID int64
	ActorID        int64
	ReservationID  int64
	Entries        models.DailyOccupancy
	Options        UpdateOptions
}

// UpdateResult describes what an occupancy update wrote
type UpdateResult struct {
	Payments models.PaymentSet `json:"payments"`
	Totals   billing.Totals    `json:"-"`
	// Created is set when the reservation had no payment and one was created.
	Created bool `json:"created"`
	// LockedPaymentIDs lists rows whose snapshot was stored but whose amount
	// was left untouched.
	LockedPaymentIDs []int64 `json:"locked_payment_ids"`
}

// SplitRequest shares a reservation's cost with another family group
type SplitRequest struct {
	OrganizationID int64
	ActorID        int64
	ReservationID  int64
	RecipientGroup string
	Entries        models.DailyOccupancy
}

// BillingSplitter keeps payment rows consistent with daily occupancy and
// refuses to reprice rows a family group has started paying.
//
// Two concurrent updates of the same reservation are last-writer-wins: both
// read the same rows and the later write replaces the earlier one. The lock
// check runs inside the UPDATE so a row locked in between is never repriced.
type BillingSplitter struct {
	organizations repository.OrganizationRepository
	familyGroups  repository.FamilyGroupRepository
	reservations  repository.ReservationRepository
	payments      repository.PaymentRepository
	checkins      repository.CheckinSessionRepository
	dispatcher    *Dispatcher
	logger        *logrus.Logger
	opts          Options
}

// NewBillingSplitter creates a BillingSplitter over the given repositories
func NewBillingSplitter(repos Repositories, dispatcher *Dispatcher, logger *logrus.Logger, opts Options) *BillingSplitter {
	return &BillingSplitter{
		organizations: repos.Organizations,
		familyGroups:  repos.FamilyGroups,
		reservations:  repos.Reservations,
		payments:      repos.Payments,
		checkins:      repos.Checkins,
		dispatcher:    dispatcher,
		logger:        logger,
		opts:          opts.withDefaults(),
	}
}

// Payments returns every payment row of a reservation
func (b *BillingSplitter) Payments(ctx context.Context, organizationID, reservationID int64) (models.PaymentSet, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.StoreTimeout)
	defer cancel()

	payments, err := b.payments.ListByReservation(ctx, organizationID, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	return payments, nil
}

// UpdateOccupancy stores new guest counts on every payment row of the
// reservation, reprices the unlocked ones and mirrors the counts into the
// family group's check-in sessions. A reservation without payments gets a
// single pending row billing the combined occupancy.
//
// Rows are written one statement each. If a write fails the call stops there;
// rows written before it keep their new values. When payments were saved but
// the check-in mirror failed, the result is returned along with ErrCheckinSync.
func (b *BillingSplitter) UpdateOccupancy(ctx context.Context, u OccupancyUpdate) (*UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.StoreTimeout)
	defer cancel()

	log := logger.ForReservation(b.logger, u.OrganizationID, u.ReservationID)

	payments, err := b.payments.ListByReservation(ctx, u.OrganizationID, u.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	reservation, settings, err := b.loadPricing(ctx, u.OrganizationID, u.ReservationID, !u.Options.SkipBillingRecalc)
	if err != nil {
		return nil, err
	}

	span := reservation.Range()
	if err := u.Entries.Validate(span); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOccupancy, err)
	}

	totals := billing.Calculate(span, u.Entries, settings.PerDiemRate())
	nights := reservation.Nights()
	result := &UpdateResult{Totals: totals, LockedPaymentIDs: []int64{}}

	if len(payments) == 0 {
		due := reservation.StartDate
		payment := &models.Payment{
			ReservationID:  reservation.ID,
			OrganizationID: reservation.OrganizationID,
			FamilyGroup:    reservation.FamilyGroup,
			SplitRole:      models.SplitRoleFull,
			Amount:         decimal.Zero,
			AmountPaid:     decimal.Zero,
			DailyOccupancy: totals.Days,
			Status:         models.PaymentStatusPending,
			DueDate:        &due,
		}
		if !u.Options.SkipBillingRecalc {
			payment.Amount = billing.Amount(models.SplitRoleFull, totals, settings, nights)
		}

		created, err := b.payments.Create(ctx, payment)
		if err != nil {
			metrics.PaymentRowUpdates.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}
		metrics.PaymentRowUpdates.WithLabelValues("created").Inc()
		log.WithField("payment_id", created.ID).Info("Created payment from occupancy")

		result.Created = true
		result.Payments = models.PaymentSet{created}
	} else {
		for _, p := range payments {
			locked, err := b.writeRow(ctx, p, totals, settings, nights, u.Options.SkipBillingRecalc)
			if err != nil {
				metrics.PaymentRowUpdates.WithLabelValues("error").Inc()
				return nil, fmt.Errorf("failed to update payment %d: %w", p.ID, err)
			}
			if locked {
				result.LockedPaymentIDs = append(result.LockedPaymentIDs, p.ID)
			}
		}
		result.Payments = payments
	}

	if !u.Options.SkipBillingRecalc {
		b.updateTotalCost(ctx, reservation, result.Payments.Total(), log)
	}

	if u.Options.ShowNotice {
		b.dispatcher.Dispatch(models.NotificationBillingUpdated, u.OrganizationID, map[string]any{
			"reservation_id":  reservation.ID,
			"family_group":    reservation.FamilyGroup,
			"source_total":    totals.SourceTotal.StringFixed(2),
			"recipient_total": totals.RecipientTotal.StringFixed(2),
			"actor_id":        u.ActorID,
		})
	}

	if err := b.syncCheckins(ctx, reservation, u.Entries); err != nil {
		log.WithError(err).Error("Failed to mirror occupancy into check-in sessions")
		return result, fmt.Errorf("%w: %v", ErrCheckinSync, err)
	}

	log.WithFields(logrus.Fields{
		"actor_id": u.ActorID,
		"rows":     len(result.Payments),
		"locked":   len(result.LockedPaymentIDs),
	}).Info("Occupancy updated")

	return result, nil
}

// RecalculateBilling reprices the reservation from new guest counts. It fails
// with ErrBillingLocked, before writing anything, when any row is locked.
func (b *BillingSplitter) RecalculateBilling(ctx context.Context, u OccupancyUpdate) (*UpdateResult, error) {
	payments, err := b.Payments(ctx, u.OrganizationID, u.ReservationID)
	if err != nil {
		return nil, err
	}
	if payments.AnyLocked() {
		logger.ForReservation(b.logger, u.OrganizationID, u.ReservationID).
			Warn("Refusing to recalculate locked billing")
		return nil, ErrBillingLocked
	}

	u.Options.SkipBillingRecalc = false
	return b.UpdateOccupancy(ctx, u)
}

// SplitCost turns the reservation's full payment into a source row for the
// booking family group and adds a recipient row for req.RecipientGroup, each
// priced from its own guests. A reservation is split with one recipient group;
// a failed split leaves the payments as they were.
func (b *BillingSplitter) SplitCost(ctx context.Context, req SplitRequest) (models.PaymentSet, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.StoreTimeout)
	defer cancel()

	log := logger.ForReservation(b.logger, req.OrganizationID, req.ReservationID)

	reservation, settings, err := b.loadPricing(ctx, req.OrganizationID, req.ReservationID, true)
	if err != nil {
		return nil, err
	}

	if req.RecipientGroup == "" || req.RecipientGroup == reservation.FamilyGroup {
		return nil, fmt.Errorf("%w: recipient must be a different family group", ErrInvalidSplit)
	}

	group, err := b.familyGroups.GetByName(ctx, req.OrganizationID, req.RecipientGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to load family group: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: family group %q", ErrNotFound, req.RecipientGroup)
	}

	span := reservation.Range()
	if err := req.Entries.Validate(span); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOccupancy, err)
	}

	payments, err := b.payments.ListByReservation(ctx, req.OrganizationID, req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	if payments.AnyLocked() {
		return nil, ErrBillingLocked
	}
	if existing := payments.ByRole(models.SplitRoleRecipient); existing != nil {
		return nil, fmt.Errorf("%w: already split with %s", ErrInvalidSplit, existing.FamilyGroup)
	}

	totals := billing.Calculate(span, req.Entries, settings.PerDiemRate())
	nights := reservation.Nights()

	undo, err := b.writeSourceRow(ctx, reservation, payments, totals, settings, nights)
	if err != nil {
		return nil, err
	}

	recipient, err := b.payments.Create(ctx, b.newSplitRow(reservation, group.Name, models.SplitRoleRecipient, totals, settings))
	if err != nil {
		if undoErr := undo(); undoErr != nil {
			log.WithError(undoErr).Error("Failed to restore payment after split failure")
		}
		return nil, fmt.Errorf("failed to create recipient payment: %w", err)
	}

	updated, err := b.payments.ListByReservation(ctx, req.OrganizationID, req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload payments: %w", err)
	}
	b.updateTotalCost(ctx, reservation, updated.Total(), log)

	b.dispatcher.Dispatch(models.NotificationSplitPaymentCreated, req.OrganizationID, map[string]any{
		"reservation_id":  reservation.ID,
		"source_group":    reservation.FamilyGroup,
		"recipient_group": group.Name,
		"payment_id":      recipient.ID,
		"amount":          recipient.Amount.StringFixed(2),
		"actor_id":        req.ActorID,
	})

	log.WithFields(logrus.Fields{
		"recipient_group": group.Name,
		"actor_id":        req.ActorID,
	}).Info("Split reservation cost")

	return updated, nil
}

// RecordPayment adds amount to what a family group has paid on a payment row.
// Any recorded amount locks the row's billing.
func (b *BillingSplitter) RecordPayment(ctx context.Context, organizationID, actorID, paymentID int64, amount decimal.Decimal) (*models.Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.StoreTimeout)
	defer cancel()

	payment, err := b.payments.RecordPaid(ctx, organizationID, paymentID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment %d", ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	b.dispatcher.Dispatch(models.NotificationSplitPaymentReceived, organizationID, map[string]any{
		"reservation_id": payment.ReservationID,
		"payment_id":     payment.ID,
		"family_group":   payment.FamilyGroup,
		"amount":         amount.StringFixed(2),
		"balance":        payment.Balance().StringFixed(2),
		"status":         payment.Status,
		"actor_id":       actorID,
	})

	b.logger.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"payment_id":      paymentID,
		"amount":          amount.String(),
	}).Info("Payment recorded")

	return payment, nil
}

func (b *BillingSplitter) loadPricing(ctx context.Context, organizationID, reservationID int64, requireSettings bool) (*models.Reservation, *models.ReservationSettings, error) {
	reservation, err := b.reservations.GetByID(ctx, organizationID, reservationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if reservation == nil {
		return nil, nil, fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	}

	settings, err := b.organizations.GetSettings(ctx, organizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reservation settings: %w", err)
	}
	if settings == nil && requireSettings {
		return nil, nil, fmt.Errorf("%w: reservation settings for organization %d", ErrNotFound, organizationID)
	}

	return reservation, settings, nil
}

// writeRow stores the snapshot on p and, unless it is locked or repricing is
// skipped, its new amount in the same statement. It reports whether the row
// turned out to be locked.
func (b *BillingSplitter) writeRow(ctx context.Context, p *models.Payment, totals billing.Totals, settings *models.ReservationSettings, nights int, skipRecalc bool) (bool, error) {
	if p.IsLocked() || skipRecalc {
		if err := b.payments.UpdateOccupancy(ctx, p.OrganizationID, p.ID, totals.Days); err != nil {
			return false, err
		}
		p.DailyOccupancy = totals.Days
		metrics.PaymentRowUpdates.WithLabelValues("snapshot").Inc()
		return p.IsLocked(), nil
	}

	next := *p
	next.DailyOccupancy = totals.Days
	next.Amount = billing.Amount(p.SplitRole, totals, settings, nights)

	ok, err := b.payments.UpdateBilling(ctx, &next)
	if err != nil {
		return false, err
	}
	if !ok {
		// Locked after it was read.
		if err := b.payments.UpdateOccupancy(ctx, p.OrganizationID, p.ID, totals.Days); err != nil {
			return false, err
		}
		p.DailyOccupancy = totals.Days
		p.BillingLocked = true
		metrics.PaymentRowUpdates.WithLabelValues("locked").Inc()
		return true, nil
	}

	*p = next
	metrics.PaymentRowUpdates.WithLabelValues("repriced").Inc()
	return false, nil
}

// writeSourceRow turns the unlocked full row into the source row, reprices an
// existing source row, or creates one. The returned func restores the
// previous state.
func (b *BillingSplitter) writeSourceRow(ctx context.Context, r *models.Reservation, payments models.PaymentSet, totals billing.Totals, settings *models.ReservationSettings, nights int) (func() error, error) {
	if full := payments.ByRole(models.SplitRoleFull); full != nil {
		previous := *full
		source := *full
		source.SplitRole = models.SplitRoleSource
		source.Amount = billing.Amount(models.SplitRoleSource, totals, settings, nights)
		source.DailyOccupancy = totals.Days

		ok, err := b.payments.UpdateBilling(ctx, &source)
		if err != nil {
			return nil, fmt.Errorf("failed to convert full payment: %w", err)
		}
		if !ok {
			return nil, ErrBillingLocked
		}
		return func() error {
			_, err := b.payments.UpdateBilling(ctx, &previous)
			return err
		}, nil
	}

	if source := payments.ByRole(models.SplitRoleSource); source != nil {
		previous := *source
		if _, err := b.writeRow(ctx, source, totals, settings, nights, false); err != nil {
			return nil, fmt.Errorf("failed to update source payment: %w", err)
		}
		return func() error {
			_, err := b.payments.UpdateBilling(ctx, &previous)
			return err
		}, nil
	}

	created, err := b.payments.Create(ctx, b.newSplitRow(r, r.FamilyGroup, models.SplitRoleSource, totals, settings))
	if err != nil {
		return nil, fmt.Errorf("failed to create source payment: %w", err)
	}
	return func() error {
		return b.payments.Delete(ctx, created.OrganizationID, created.ID)
	}, nil
}

func (b *BillingSplitter) newSplitRow(r *models.Reservation, group string, role models.SplitRole, totals billing.Totals, settings *models.ReservationSettings) *models.Payment {
	due := r.StartDate
	return &models.Payment{
		ReservationID:  r.ID,
		OrganizationID: r.OrganizationID,
		FamilyGroup:    group,
		SplitRole:      role,
		Amount:         billing.Amount(role, totals, settings, r.Nights()),
		AmountPaid:     decimal.Zero,
		DailyOccupancy: totals.Days,
		Status:         models.PaymentStatusPending,
		DueDate:        &due,
	}
}

func (b *BillingSplitter) updateTotalCost(ctx context.Context, r *models.Reservation, total decimal.Decimal, log *logrus.Entry) {
	if err := b.reservations.UpdateTotalCost(ctx, r.OrganizationID, r.ID, total); err != nil {
		log.WithError(err).Warn("Failed to update reservation total cost")
		return
	}
	r.TotalCost = decimal.NewNullDecimal(total)
}

// syncCheckins writes each day's total guests into the dailyOccupancy map of
// every check-in session the family group filed during the stay.
func (b *BillingSplitter) syncCheckins(ctx context.Context, r *models.Reservation, entries models.DailyOccupancy) error {
	if len(entries) == 0 {
		return nil
	}

	span := r.Range()
	sessions, err := b.checkins.ListByRange(ctx, r.OrganizationID, r.FamilyGroup, span.Start, span.End)
	if err != nil {
		return fmt.Errorf("failed to load check-in sessions: %w", err)
	}

	var result *multierror.Error
	for _, session := range sessions {
		if session.ChecklistResponses == nil {
			session.ChecklistResponses = models.ChecklistResponses{}
		}
		occupancy, err := session.ChecklistResponses.DailyOccupancy()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("session %d: %w", session.ID, err))
			continue
		}

		changed := false
		for _, e := range entries {
			key := daterange.Format(e.Date)
			if current, ok := occupancy[key]; !ok || current != e.TotalGuests() {
				occupancy[key] = e.TotalGuests()
				changed = true
			}
		}
		if !changed {
			continue
		}

		if err := session.ChecklistResponses.SetDailyOccupancy(occupancy); err != nil {
			result = multierror.Append(result, fmt.Errorf("session %d: %w", session.ID, err))
			continue
		}
		if err := b.checkins.UpdateResponses(ctx, session); err != nil {
			result = multierror.Append(result, fmt.Errorf("session %d: %w", session.ID, err))
		}
	}

	return result.ErrorOrNil()
}
