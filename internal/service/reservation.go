package service

import (
	"context"
	"fmt"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/logger"
)

// CreateReservationRequest is a booking made on behalf of a family group
type CreateReservationRequest struct {
	OrganizationID int64
	ActorID        int64
	FamilyGroup    string
	PropertyName   string
	Range          daterange.Range
	GuestCount     int
	AdminOverride  bool

	TimePeriodNumber   *int
	AllocatedStartDate *time.Time
	AllocatedEndDate   *time.Time
}

// UpdateDatesRequest moves or resizes an existing reservation
type UpdateDatesRequest struct {
	OrganizationID int64
	ActorID        int64
	ReservationID  int64
	Range          daterange.Range
	// GuestCount keeps the current value when nil.
	GuestCount    *int
	AdminOverride bool
}

// CreateReservation validates the stay and books it as confirmed. When the
// stay is rejected the reservation is nil and the result lists why.
func (s *Service) CreateReservation(ctx context.Context, req CreateReservationRequest) (*models.Reservation, ValidationResult, error) {
	result := ValidationResult{Errors: []string{}, Warnings: []string{}}

	lookupCtx, cancel := s.withTimeout(ctx)
	group, err := s.FamilyGroups.GetByName(lookupCtx, req.OrganizationID, req.FamilyGroup)
	cancel()
	if err != nil {
		return nil, result, fmt.Errorf("failed to load family group: %w", err)
	}
	if group == nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Family group %q does not exist", req.FamilyGroup))
		return nil, result, nil
	}

	result = s.Conflicts.ValidateReservationDates(ctx, ValidationRequest{
		ConflictQuery: ConflictQuery{
			OrganizationID: req.OrganizationID,
			Range:          req.Range,
			PropertyName:   req.PropertyName,
		},
		FamilyGroup:   req.FamilyGroup,
		AdminOverride: req.AdminOverride,
	})
	if !result.IsValid {
		return nil, result, nil
	}

	actor := req.ActorID
	reservation := &models.Reservation{
		OrganizationID:     req.OrganizationID,
		FamilyGroup:        group.Name,
		PropertyName:       req.PropertyName,
		StartDate:          daterange.Day(req.Range.Start),
		EndDate:            daterange.Day(req.Range.End),
		GuestCount:         req.GuestCount,
		Status:             models.ReservationStatusConfirmed,
		TimePeriodNumber:   req.TimePeriodNumber,
		AllocatedStartDate: req.AllocatedStartDate,
		AllocatedEndDate:   req.AllocatedEndDate,
		CreatedByID:        &actor,
	}

	ctx, cancel = s.withTimeout(ctx)
	defer cancel()

	created, err := s.Reservations.Create(ctx, reservation)
	if err != nil {
		return nil, result, fmt.Errorf("failed to create reservation: %w", err)
	}

	logger.ForReservation(s.logger, created.OrganizationID, created.ID).
		WithField("range", created.Range().String()).
		Info("Reservation created")

	s.dispatcher.Dispatch(models.NotificationReservationConfirmed, created.OrganizationID, reservationPayload(created))

	return created, result, nil
}

// UpdateReservationDates moves a reservation after validating the new range in
// edit mode, so an in-progress stay may still be extended.
func (s *Service) UpdateReservationDates(ctx context.Context, req UpdateDatesRequest) (*models.Reservation, ValidationResult, error) {
	result := ValidationResult{Errors: []string{}, Warnings: []string{}}

	lookupCtx, cancel := s.withTimeout(ctx)
	reservation, err := s.Reservations.GetByID(lookupCtx, req.OrganizationID, req.ReservationID)
	cancel()
	if err != nil {
		return nil, result, fmt.Errorf("failed to load reservation: %w", err)
	}
	if reservation == nil {
		return nil, result, fmt.Errorf("%w: reservation %d", ErrNotFound, req.ReservationID)
	}
	if reservation.Status == models.ReservationStatusCancelled {
		result.Errors = append(result.Errors, "Cancelled reservations cannot be changed")
		return nil, result, nil
	}

	exclude := reservation.ID
	result = s.Conflicts.ValidateReservationDates(ctx, ValidationRequest{
		ConflictQuery: ConflictQuery{
			OrganizationID:       req.OrganizationID,
			Range:                req.Range,
			PropertyName:         reservation.PropertyName,
			ExcludeReservationID: &exclude,
		},
		FamilyGroup:   reservation.FamilyGroup,
		EditMode:      true,
		AdminOverride: req.AdminOverride,
	})
	if !result.IsValid {
		return nil, result, nil
	}

	reservation.StartDate = daterange.Day(req.Range.Start)
	reservation.EndDate = daterange.Day(req.Range.End)
	if req.GuestCount != nil {
		reservation.GuestCount = *req.GuestCount
	}

	ctx, cancel = s.withTimeout(ctx)
	defer cancel()

	updated, err := s.Reservations.UpdateDates(ctx, reservation)
	if err != nil {
		return nil, result, fmt.Errorf("failed to update reservation: %w", err)
	}

	logger.ForReservation(s.logger, updated.OrganizationID, updated.ID).
		WithField("range", updated.Range().String()).
		Info("Reservation dates updated")

	payload := reservationPayload(updated)
	payload["actor_id"] = req.ActorID
	s.dispatcher.Dispatch(models.NotificationReservationUpdated, updated.OrganizationID, payload)

	return updated, result, nil
}

// CancelReservation marks a reservation cancelled. Cancelling twice is a no-op.
func (s *Service) CancelReservation(ctx context.Context, organizationID, actorID, reservationID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reservation, err := s.Reservations.GetByID(ctx, organizationID, reservationID)
	if err != nil {
		return fmt.Errorf("failed to load reservation: %w", err)
	}
	if reservation == nil {
		return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	}
	if reservation.Status == models.ReservationStatusCancelled {
		return nil
	}

	if err := s.Reservations.UpdateStatus(ctx, organizationID, reservationID, models.ReservationStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	reservation.Status = models.ReservationStatusCancelled

	logger.ForReservation(s.logger, organizationID, reservationID).
		WithField("actor_id", actorID).
		Info("Reservation cancelled")

	payload := reservationPayload(reservation)
	payload["actor_id"] = actorID
	s.dispatcher.Dispatch(models.NotificationReservationCancelled, organizationID, payload)

	return nil
}

// GetReservation returns one reservation or ErrNotFound
func (s *Service) GetReservation(ctx context.Context, organizationID, reservationID int64) (*models.Reservation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reservation, err := s.Reservations.GetByID(ctx, organizationID, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	}
	return reservation, nil
}

// ListReservations returns the organization's reservations matching filters
func (s *Service) ListReservations(ctx context.Context, organizationID int64, filters repository.ReservationFilters) ([]*models.Reservation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reservations, err := s.Reservations.List(ctx, organizationID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	if reservations == nil {
		reservations = []*models.Reservation{}
	}
	return reservations, nil
}

func reservationPayload(r *models.Reservation) map[string]any {
	return map[string]any{
		"reservation_id": r.ID,
		"family_group":   r.FamilyGroup,
		"property_name":  r.PropertyName,
		"start_date":     daterange.Format(r.StartDate),
		"end_date":       daterange.Format(r.EndDate),
		"guest_count":    r.GuestCount,
		"status":         r.Status,
	}
}
