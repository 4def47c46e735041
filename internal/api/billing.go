package api

import (
	"errors"
	"net/http"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/service"
)

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	orgID, id, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}

	if _, err := s.svc.GetReservation(r.Context(), orgID, id); err != nil {
		s.respondServiceError(w, err, "get reservation")
		return
	}

	payments, err := s.svc.Billing.Payments(r.Context(), orgID, id)
	if err != nil {
		s.respondServiceError(w, err, "list payments")
		return
	}

	unlocked, locked := payments.Partition()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"payments":       payments,
		"total":          payments.Total().StringFixed(2),
		"billing_locked": len(locked) > 0,
		"editable":       len(unlocked),
	})
}

func (s *Server) handleUpdateOccupancy(w http.ResponseWriter, r *http.Request) {
	orgID, id, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}
	actorID, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req occupancyRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := s.svc.Billing.UpdateOccupancy(r.Context(), service.OccupancyUpdate{
		OrganizationID: orgID,
		ActorID:        actorID,
		ReservationID:  id,
		Entries:        toOccupancy(req.Entries),
		Options: service.UpdateOptions{
			SkipBillingRecalc: req.SkipBillingRecalc,
			ShowNotice:        req.ShowNotice,
		},
	})
	s.respondBilling(w, result, err, "update occupancy")
}

func (s *Server) handleRecalculateBilling(w http.ResponseWriter, r *http.Request) {
	orgID, id, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}
	actorID, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req occupancyRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := s.svc.Billing.RecalculateBilling(r.Context(), service.OccupancyUpdate{
		OrganizationID: orgID,
		ActorID:        actorID,
		ReservationID:  id,
		Entries:        toOccupancy(req.Entries),
		Options:        service.UpdateOptions{ShowNotice: req.ShowNotice},
	})
	s.respondBilling(w, result, err, "recalculate billing")
}

// respondBilling writes an occupancy update result. A failed check-in mirror
// still reports the saved payments, flagged so the client can retry.
func (s *Server) respondBilling(w http.ResponseWriter, result *service.UpdateResult, err error, op string) {
	if err != nil && !(errors.Is(err, service.ErrCheckinSync) && result != nil) {
		s.respondServiceError(w, err, op)
		return
	}

	body := map[string]any{
		"success":            err == nil,
		"created":            result.Created,
		"payments":           result.Payments,
		"locked_payment_ids": result.LockedPaymentIDs,
		"source_total":       result.Totals.SourceTotal.StringFixed(2),
		"recipient_total":    result.Totals.RecipientTotal.StringFixed(2),
		"daily_occupancy":    result.Totals.Days,
	}
	if err != nil {
		body["error"] = err.Error()
		body["retryable"] = true
	}
	s.respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleSplitCost(w http.ResponseWriter, r *http.Request) {
	orgID, id, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}
	actorID, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req splitRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	payments, err := s.svc.Billing.SplitCost(r.Context(), service.SplitRequest{
		OrganizationID: orgID,
		ActorID:        actorID,
		ReservationID:  id,
		RecipientGroup: req.RecipientGroup,
		Entries:        toOccupancy(req.Entries),
	})
	if err != nil {
		s.respondServiceError(w, err, "split cost")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"payments": payments,
		"total":    payments.Total().StringFixed(2),
	})
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	orgID, id, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}
	actorID, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req recordPaymentRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	payment, err := s.svc.Billing.RecordPayment(r.Context(), orgID, actorID, id, req.Amount)
	if err != nil {
		s.respondServiceError(w, err, "record payment")
		return
	}

	s.respondJSON(w, http.StatusOK, payment)
}
