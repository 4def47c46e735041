package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/shopspring/decimal"
)

type organizationRepository struct{ s *Store }

func (r *organizationRepository) GetByID(_ context.Context, id int64) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("organizations.GetByID"); err != nil {
		return nil, err
	}
	if org, ok := r.s.organizations[id]; ok {
		cp := *org
		return &cp, nil
	}
	return nil, nil
}

func (r *organizationRepository) GetByChatID(_ context.Context, chatID int64) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("organizations.GetByChatID"); err != nil {
		return nil, err
	}
	for _, org := range r.s.organizations {
		if org.TelegramChatID != nil && *org.TelegramChatID == chatID {
			cp := *org
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *organizationRepository) GetSettings(_ context.Context, organizationID int64) (*models.ReservationSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("organizations.GetSettings"); err != nil {
		return nil, err
	}
	if settings, ok := r.s.settings[organizationID]; ok {
		cp := *settings
		return &cp, nil
	}
	return nil, nil
}

type familyGroupRepository struct{ s *Store }

func (r *familyGroupRepository) GetByName(_ context.Context, organizationID int64, name string) (*models.FamilyGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("familyGroups.GetByName"); err != nil {
		return nil, err
	}
	for _, g := range r.s.familyGroups {
		if g.OrganizationID == organizationID && g.Name == name {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *familyGroupRepository) List(_ context.Context, organizationID int64) ([]*models.FamilyGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("familyGroups.List"); err != nil {
		return nil, err
	}
	var groups []*models.FamilyGroup
	for _, g := range r.s.familyGroups {
		if g.OrganizationID == organizationID {
			cp := *g
			groups = append(groups, &cp)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

type reservationRepository struct{ s *Store }

func (r *reservationRepository) Create(_ context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reservations.Create"); err != nil {
		return nil, err
	}
	if !reservation.Range().Valid() {
		return nil, fmt.Errorf("failed to create reservation: start_date must be before end_date")
	}
	now := time.Now()
	reservation.ID = r.s.id()
	reservation.CreatedAt, reservation.UpdatedAt = now, now
	if reservation.Status == "" {
		reservation.Status = models.ReservationStatusConfirmed
	}
	r.s.reservations[reservation.ID] = copyReservation(reservation)
	return reservation, nil
}

func (r *reservationRepository) GetByID(_ context.Context, organizationID, id int64) (*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reservations.GetByID"); err != nil {
		return nil, err
	}
	if res, ok := r.s.reservations[id]; ok && res.OrganizationID == organizationID {
		return copyReservation(res), nil
	}
	return nil, nil
}

func (r *reservationRepository) List(_ context.Context, organizationID int64, filters repository.ReservationFilters) ([]*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reservations.List"); err != nil {
		return nil, err
	}
	return r.collect(func(res *models.Reservation) bool {
		if res.OrganizationID != organizationID {
			return false
		}
		if filters.Status != nil && res.Status != *filters.Status {
			return false
		}
		if filters.From != nil && !res.EndDate.After(daterange.Day(*filters.From)) {
			return false
		}
		if filters.To != nil && !res.StartDate.Before(daterange.Day(*filters.To)) {
			return false
		}
		return true
	}, filters.Limit), nil
}

func (r *reservationRepository) ListConfirmed(_ context.Context, organizationID int64, filters repository.ConflictFilters) ([]*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reservations.ListConfirmed"); err != nil {
		return nil, err
	}
	return r.collect(func(res *models.Reservation) bool {
		if res.OrganizationID != organizationID || !res.IsConfirmed() {
			return false
		}
		if filters.PropertyName != nil && res.PropertyName != "" && res.PropertyName != *filters.PropertyName {
			return false
		}
		if filters.ExcludeReservationID != nil && res.ID == *filters.ExcludeReservationID {
			return false
		}
		return true
	}, 0), nil
}

func (r *reservationRepository) ListStartingOn(_ context.Context, day time.Time) ([]*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reservations.ListStartingOn"); err != nil {
		return nil, err
	}
	day = daterange.Day(day)
	return r.collect(func(res *models.Reservation) bool {
		return res.IsConfirmed() && res.ReminderSentAt == nil && daterange.Day(res.StartDate).Equal(day)
	}, 0), nil
}

func (r *reservationRepository) UpdateDates(_ context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reservations.UpdateDates"); err != nil {
		return nil, err
	}
	stored, ok := r.s.reservations[reservation.ID]
	if !ok || stored.OrganizationID != reservation.OrganizationID {
		return nil, fmt.Errorf("reservation with ID %d not found: %w", reservation.ID, repository.ErrNotFound)
	}
	stored.StartDate = reservation.StartDate
	stored.EndDate = reservation.EndDate
	stored.GuestCount = reservation.GuestCount
	stored.PropertyName = reservation.PropertyName
	stored.UpdatedAt = time.Now()
	reservation.UpdatedAt = stored.UpdatedAt
	return reservation, nil
}

func (r *reservationRepository) UpdateStatus(_ context.Context, organizationID, id int64, status models.ReservationStatus) error {
	return r.update("reservations.UpdateStatus", organizationID, id, func(res *models.Reservation) {
		res.Status = status
	})
}

func (r *reservationRepository) UpdateTotalCost(_ context.Context, organizationID, id int64, total decimal.Decimal) error {
	return r.update("reservations.UpdateTotalCost", organizationID, id, func(res *models.Reservation) {
		res.TotalCost = decimal.NewNullDecimal(total)
	})
}

func (r *reservationRepository) MarkReminderSent(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("reservations.MarkReminderSent"); err != nil {
		return err
	}
	res, ok := r.s.reservations[id]
	if !ok {
		return fmt.Errorf("reservation with ID %d not found: %w", id, repository.ErrNotFound)
	}
	res.ReminderSentAt = &at
	return nil
}

func (r *reservationRepository) update(op string, organizationID, id int64, apply func(*models.Reservation)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return err
	}
	res, ok := r.s.reservations[id]
	if !ok || res.OrganizationID != organizationID {
		return fmt.Errorf("reservation with ID %d not found: %w", id, repository.ErrNotFound)
	}
	apply(res)
	res.UpdatedAt = time.Now()
	return nil
}

func (r *reservationRepository) collect(keep func(*models.Reservation) bool, limit int) []*models.Reservation {
	var out []*models.Reservation
	for _, res := range r.s.reservations {
		if keep(res) {
			out = append(out, copyReservation(res))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type paymentRepository struct{ s *Store }

func (r *paymentRepository) Create(_ context.Context, payment *models.Payment) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("payments.Create"); err != nil {
		return nil, err
	}
	now := time.Now()
	payment.ID = r.s.id()
	payment.CreatedAt, payment.UpdatedAt = now, now
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	if payment.SplitRole == "" {
		payment.SplitRole = models.SplitRoleFull
	}
	r.s.payments[payment.ID] = copyPayment(payment)
	return payment, nil
}

func (r *paymentRepository) ListByReservation(_ context.Context, organizationID, reservationID int64) (models.PaymentSet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("payments.ListByReservation"); err != nil {
		return nil, err
	}
	var set models.PaymentSet
	for _, p := range r.s.payments {
		if p.OrganizationID == organizationID && p.ReservationID == reservationID {
			set = append(set, copyPayment(p))
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i].ID < set[j].ID })
	return set, nil
}

func (r *paymentRepository) UpdateBilling(_ context.Context, payment *models.Payment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("payments.UpdateBilling"); err != nil {
		return false, err
	}
	stored, ok := r.s.payments[payment.ID]
	if !ok || stored.OrganizationID != payment.OrganizationID {
		return false, nil
	}
	if stored.BillingLocked || stored.AmountPaid.IsPositive() {
		return false, nil
	}
	stored.Amount = payment.Amount
	stored.SplitRole = payment.SplitRole
	stored.DailyOccupancy = append(models.DailyOccupancy(nil), payment.DailyOccupancy...)
	stored.UpdatedAt = time.Now()
	payment.UpdatedAt = stored.UpdatedAt
	return true, nil
}

func (r *paymentRepository) UpdateOccupancy(_ context.Context, organizationID, id int64, occupancy models.DailyOccupancy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("payments.UpdateOccupancy"); err != nil {
		return err
	}
	stored, ok := r.s.payments[id]
	if !ok || stored.OrganizationID != organizationID {
		return fmt.Errorf("payment with ID %d not found: %w", id, repository.ErrNotFound)
	}
	stored.DailyOccupancy = append(models.DailyOccupancy(nil), occupancy...)
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *paymentRepository) RecordPaid(_ context.Context, organizationID, id int64, amount decimal.Decimal) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("payments.RecordPaid"); err != nil {
		return nil, err
	}
	stored, ok := r.s.payments[id]
	if !ok || stored.OrganizationID != organizationID {
		return nil, fmt.Errorf("payment with ID %d not found: %w", id, repository.ErrNotFound)
	}
	stored.AmountPaid = stored.AmountPaid.Add(amount)
	stored.BillingLocked = true
	if stored.AmountPaid.GreaterThanOrEqual(stored.Amount) {
		stored.Status = models.PaymentStatusPaid
	} else {
		stored.Status = models.PaymentStatusPartial
	}
	stored.UpdatedAt = time.Now()
	return copyPayment(stored), nil
}

func (r *paymentRepository) Delete(_ context.Context, organizationID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("payments.Delete"); err != nil {
		return err
	}
	stored, ok := r.s.payments[id]
	if !ok || stored.OrganizationID != organizationID || stored.BillingLocked || stored.AmountPaid.IsPositive() {
		return fmt.Errorf("unlocked payment with ID %d not found: %w", id, repository.ErrNotFound)
	}
	delete(r.s.payments, id)
	return nil
}

type checkinSessionRepository struct{ s *Store }

func (r *checkinSessionRepository) ListByRange(_ context.Context, organizationID int64, familyGroup string, from, to time.Time) ([]*models.CheckinSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("checkins.ListByRange"); err != nil {
		return nil, err
	}
	span := daterange.New(from, to)
	var sessions []*models.CheckinSession
	for _, c := range r.s.checkins {
		if c.OrganizationID == organizationID && c.FamilyGroup == familyGroup && span.Contains(c.CheckDate) {
			sessions = append(sessions, copyCheckin(c))
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (r *checkinSessionRepository) UpdateResponses(_ context.Context, session *models.CheckinSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("checkins.UpdateResponses"); err != nil {
		return err
	}
	stored, ok := r.s.checkins[session.ID]
	if !ok || stored.OrganizationID != session.OrganizationID {
		return fmt.Errorf("checkin session with ID %d not found: %w", session.ID, repository.ErrNotFound)
	}
	updated := copyCheckin(session)
	updated.UpdatedAt = time.Now()
	r.s.checkins[session.ID] = updated
	return nil
}
