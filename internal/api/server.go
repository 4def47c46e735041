package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/service"
	"github.com/sirupsen/logrus"
)

// actorHeader carries the id of the user performing a change
const actorHeader = "X-Actor-ID"

// Server provides the HTTP API.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	const org = "/api/organizations/{org}"

	// API – Availability
	s.mux.HandleFunc("POST "+org+"/availability/check", s.handleCheckAvailability)
	s.mux.HandleFunc("POST "+org+"/availability/validate", s.handleValidateDates)
	s.mux.HandleFunc("POST "+org+"/availability/alternatives", s.handleSuggestAlternatives)

	// API – Reservations
	s.mux.HandleFunc("GET "+org+"/reservations", s.handleListReservations)
	s.mux.HandleFunc("POST "+org+"/reservations", s.handleCreateReservation)
	s.mux.HandleFunc("GET "+org+"/reservations/{id}", s.handleGetReservation)
	s.mux.HandleFunc("PUT "+org+"/reservations/{id}/dates", s.handleUpdateDates)
	s.mux.HandleFunc("POST "+org+"/reservations/{id}/cancel", s.handleCancelReservation)

	// API – Billing
	s.mux.HandleFunc("GET "+org+"/reservations/{id}/payments", s.handleListPayments)
	s.mux.HandleFunc("PUT "+org+"/reservations/{id}/occupancy", s.handleUpdateOccupancy)
	s.mux.HandleFunc("POST "+org+"/reservations/{id}/billing/recalculate", s.handleRecalculateBilling)
	s.mux.HandleFunc("POST "+org+"/reservations/{id}/split", s.handleSplitCost)
	s.mux.HandleFunc("POST "+org+"/payments/{id}/record", s.handleRecordPayment)

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to statuses. Anything not caused by
// the request itself is reported as retryable.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrBillingLocked):
		s.respondError(w, http.StatusConflict, "billing is locked because a payment has been recorded")
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case service.IsInputError(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.WithError(err).Errorf("failed to %s", op)
		w.Header().Set("Retry-After", "5")
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":     fmt.Sprintf("failed to %s", op),
			"retryable": true,
		})
	}
}

// decodeJSON reads the request body into dst and validates it. The caller
// should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	if err := validateRequest(dst); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// pathInt extracts a path value and converts it to int64.
func pathInt(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s in path", name)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// requireIDs reads the {org} and, when withID is set, {id} path values. It
// writes an error response when either is invalid.
func (s *Server) requireIDs(w http.ResponseWriter, r *http.Request, withID bool) (orgID, id int64, ok bool) {
	orgID, err := pathInt(r, "org")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid organization id")
		return 0, 0, false
	}
	if withID {
		id, err = pathInt(r, "id")
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid id")
			return 0, 0, false
		}
	}
	return orgID, id, true
}

// requireActor reads the X-Actor-ID header. It writes an error response and
// returns false when the header is absent or invalid.
func (s *Server) requireActor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(actorHeader)
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, actorHeader+" header is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, actorHeader+" must be a positive integer")
		return 0, false
	}
	return id, true
}
