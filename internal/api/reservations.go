package api

import (
	"net/http"
	"strconv"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/service"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
)

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

func (s *Server) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := s.requireIDs(w, r, false)
	if !ok {
		return
	}

	var req checkAvailabilityRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	result := s.svc.Conflicts.DetectConflicts(r.Context(), service.ConflictQuery{
		OrganizationID:       orgID,
		Range:                req.span(),
		PropertyName:         req.PropertyName,
		ExcludeReservationID: req.ExcludeReservationID,
	})

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleValidateDates(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := s.requireIDs(w, r, false)
	if !ok {
		return
	}

	var req validateDatesRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	result := s.svc.Conflicts.ValidateReservationDates(r.Context(), service.ValidationRequest{
		ConflictQuery: service.ConflictQuery{
			OrganizationID:       orgID,
			Range:                req.span(),
			PropertyName:         req.PropertyName,
			ExcludeReservationID: req.ExcludeReservationID,
		},
		FamilyGroup:   req.FamilyGroup,
		EditMode:      req.EditMode,
		AdminOverride: req.AdminOverride,
	})

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSuggestAlternatives(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := s.requireIDs(w, r, false)
	if !ok {
		return
	}

	var req alternativesRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if !req.span().Valid() {
		s.respondError(w, http.StatusBadRequest, "end_date must be after start_date")
		return
	}

	alternatives := s.svc.Conflicts.SuggestAlternativeDates(r.Context(), service.AlternativeQuery{
		ConflictQuery: service.ConflictQuery{
			OrganizationID: orgID,
			Range:          req.span(),
			PropertyName:   req.PropertyName,
		},
		DaysToSearch: req.DaysToSearch,
	})

	out := make([]map[string]string, 0, len(alternatives))
	for _, alt := range alternatives {
		out = append(out, map[string]string{
			"start_date": daterange.Format(alt.Start),
			"end_date":   daterange.Format(alt.End),
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"alternatives": out})
}

// ---------------------------------------------------------------------------
// Reservations
// ---------------------------------------------------------------------------

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := s.requireIDs(w, r, false)
	if !ok {
		return
	}

	q := r.URL.Query()
	var filters repository.ReservationFilters

	if from := q.Get("from"); from != "" {
		t, err := daterange.Parse(from)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "from must be a YYYY-MM-DD date")
			return
		}
		filters.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := daterange.Parse(to)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "to must be a YYYY-MM-DD date")
			return
		}
		filters.To = &t
	}
	if status := q.Get("status"); status != "" {
		st := models.ReservationStatus(status)
		if !st.Valid() {
			s.respondError(w, http.StatusBadRequest, "unknown status")
			return
		}
		filters.Status = &st
	}
	if limit := q.Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			filters.Limit = v
		}
	}

	reservations, err := s.svc.ListReservations(r.Context(), orgID, filters)
	if err != nil {
		s.respondServiceError(w, err, "list reservations")
		return
	}

	s.respondJSON(w, http.StatusOK, reservations)
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := s.requireIDs(w, r, false)
	if !ok {
		return
	}
	actorID, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req createReservationRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	create := service.CreateReservationRequest{
		OrganizationID:   orgID,
		ActorID:          actorID,
		FamilyGroup:      req.FamilyGroup,
		PropertyName:     req.PropertyName,
		Range:            req.span(),
		GuestCount:       req.GuestCount,
		AdminOverride:    req.AdminOverride,
		TimePeriodNumber: req.TimePeriodNumber,
	}
	if req.AllocatedStartDate != nil {
		t, _ := daterange.Parse(*req.AllocatedStartDate)
		create.AllocatedStartDate = &t
	}
	if req.AllocatedEndDate != nil {
		t, _ := daterange.Parse(*req.AllocatedEndDate)
		create.AllocatedEndDate = &t
	}

	created, result, err := s.svc.CreateReservation(r.Context(), create)
	if err != nil {
		s.respondServiceError(w, err, "create reservation")
		return
	}
	if !result.IsValid {
		s.respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"reservation": created,
		"warnings":    result.Warnings,
	})
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	orgID, id, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}

	reservation, err := s.svc.GetReservation(r.Context(), orgID, id)
	if err != nil {
		s.respondServiceError(w, err, "get reservation")
		return
	}

	s.respondJSON(w, http.StatusOK, reservation)
}

func (s *Server) handleUpdateDates(w http.ResponseWriter, r *http.Request) {
	orgID, id, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}
	actorID, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req updateDatesRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	start, _ := daterange.Parse(req.StartDate)
	end, _ := daterange.Parse(req.EndDate)

	updated, result, err := s.svc.UpdateReservationDates(r.Context(), service.UpdateDatesRequest{
		OrganizationID: orgID,
		ActorID:        actorID,
		ReservationID:  id,
		Range:          daterange.New(start, end),
		GuestCount:     req.GuestCount,
		AdminOverride:  req.AdminOverride,
	})
	if err != nil {
		s.respondServiceError(w, err, "update reservation")
		return
	}
	if !result.IsValid {
		s.respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"reservation": updated,
		"warnings":    result.Warnings,
	})
}

func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	orgID, id, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}
	actorID, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	if err := s.svc.CancelReservation(r.Context(), orgID, actorID, id); err != nil {
		s.respondServiceError(w, err, "cancel reservation")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}
