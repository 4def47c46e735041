package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository/memory"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/service"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	store   *memory.Store
	org     *models.Organization
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	org := store.AddOrganization(&models.Organization{Name: "Lakeside"}, &models.ReservationSettings{
		FinancialMethod: models.FinancialMethodPerPersonPerNight,
		NightlyRate:     decimal.NewFromInt(25),
	})
	store.AddFamilyGroup(org.ID, "Smith")
	store.AddFamilyGroup(org.ID, "Jones")

	orgs, groups, reservations, payments, checkins := store.Repositories()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := service.New(logger.Discard(), service.Repositories{
		Organizations: orgs,
		FamilyGroups:  groups,
		Reservations:  reservations,
		Payments:      payments,
		Checkins:      checkins,
	}, nil, service.Options{StoreTimeout: time.Second, Now: func() time.Time { return now }})

	return &testServer{handler: NewServer(svc, logger.Discard()).Handler(), store: store, org: org}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, fmt.Sprintf("/api/organizations/%d%s", ts.org.ID, path), &buf)
	req.Header.Set(actorHeader, "7")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func (ts *testServer) book(group, start, end string) *models.Reservation {
	s, _ := daterange.Parse(start)
	e, _ := daterange.Parse(end)
	return ts.store.AddReservation(&models.Reservation{OrganizationID: ts.org.ID, FamilyGroup: group, StartDate: s, EndDate: e})
}

var augustEntries = []map[string]any{
	{"date": "2024-08-01", "sourceGuests": 2, "recipientGuests": 1},
	{"date": "2024-08-02", "sourceGuests": 2, "recipientGuests": 1},
	{"date": "2024-08-03", "sourceGuests": 2, "recipientGuests": 0},
}

func TestCreateReservation(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/reservations", map[string]any{
		"family_group": "Smith",
		"start_date":   "2024-07-01",
		"end_date":     "2024-07-08",
		"guest_count":  4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Smith", body["reservation"].(map[string]any)["family_group"])

	rec, body = ts.do(t, http.MethodPost, "/reservations", map[string]any{
		"family_group": "Jones",
		"start_date":   "2024-07-05",
		"end_date":     "2024-07-09",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, body["is_valid"])
	assert.Equal(t, []any{"Conflicts with Smith's reservation from 2024-07-01 to 2024-07-08"}, body["errors"])

	t.Run("bad input", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/reservations", map[string]any{
			"family_group": "Jones",
			"start_date":   "07/05/2024",
			"end_date":     "2024-07-09",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "start_date must be a YYYY-MM-DD date", body["error"])
	})

	t.Run("missing actor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/organizations/%d/reservations", ts.org.ID), bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAvailabilityEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.book("Smith", "2024-07-01", "2024-07-08")

	rec, body := ts.do(t, http.MethodPost, "/availability/check", map[string]any{
		"start_date": "2024-07-05",
		"end_date":   "2024-07-10",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["conflicts"], 1)
	assert.Equal(t, false, body["check_failed"])

	rec, body = ts.do(t, http.MethodPost, "/availability/alternatives", map[string]any{
		"start_date":     "2024-07-05",
		"end_date":       "2024-07-08",
		"days_to_search": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{map[string]any{"start_date": "2024-07-08", "end_date": "2024-07-11"}}, body["alternatives"])

	ts.store.Fail("reservations.ListConfirmed", errors.New("connection refused"))
	rec, body = ts.do(t, http.MethodPost, "/availability/validate", map[string]any{
		"start_date":   "2024-07-05",
		"end_date":     "2024-07-10",
		"family_group": "Jones",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["is_valid"])
	assert.Len(t, body["warnings"], 1)
}

func TestOccupancyAndLocking(t *testing.T) {
	ts := newTestServer(t)
	r := ts.book("Smith", "2024-08-01", "2024-08-04")
	path := fmt.Sprintf("/reservations/%d", r.ID)

	rec, body := ts.do(t, http.MethodPut, path+"/occupancy", map[string]any{"entries": augustEntries})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["created"])
	assert.Equal(t, "150.00", body["source_total"])
	assert.Equal(t, "50.00", body["recipient_total"])

	payments := body["payments"].([]any)
	require.Len(t, payments, 1)
	payment := payments[0].(map[string]any)
	assert.Equal(t, "200", payment["amount"])
	assert.Equal(t, "full", payment["split_role"])

	paymentID := int64(payment["id"].(float64))
	rec, body = ts.do(t, http.MethodPost, fmt.Sprintf("/payments/%d/record", paymentID), map[string]any{"amount": "50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "partial", body["status"])

	rec, _ = ts.do(t, http.MethodPost, path+"/billing/recalculate", map[string]any{"entries": augustEntries})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = ts.do(t, http.MethodGet, path+"/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["billing_locked"])
	assert.Equal(t, "200.00", body["total"])
}

func TestOccupancyErrors(t *testing.T) {
	ts := newTestServer(t)
	r := ts.book("Smith", "2024-08-01", "2024-08-04")
	path := fmt.Sprintf("/reservations/%d/occupancy", r.ID)

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
	}{
		{"negative guests", path, map[string]any{"entries": []map[string]any{{"date": "2024-08-01", "sourceGuests": -1}}}, http.StatusBadRequest},
		{"no entries", path, map[string]any{"entries": []map[string]any{}}, http.StatusBadRequest},
		{"day outside stay", path, map[string]any{"entries": []map[string]any{{"date": "2024-08-09", "sourceGuests": 1}}}, http.StatusBadRequest},
		{"unknown reservation", "/reservations/999/occupancy", map[string]any{"entries": augustEntries}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := ts.do(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	t.Run("store failure is retryable", func(t *testing.T) {
		ts.store.Fail("payments.ListByReservation", errors.New("connection reset"))
		defer ts.store.Fail("payments.ListByReservation", nil)

		rec, body := ts.do(t, http.MethodPut, path, map[string]any{"entries": augustEntries})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "5", rec.Header().Get("Retry-After"))
		assert.Equal(t, true, body["retryable"])
	})
}

func TestSplitAndCancel(t *testing.T) {
	ts := newTestServer(t)
	r := ts.book("Smith", "2024-08-01", "2024-08-04")

	rec, body := ts.do(t, http.MethodPost, fmt.Sprintf("/reservations/%d/split", r.ID), map[string]any{
		"recipient_group": "Jones",
		"entries":         augustEntries,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, body["payments"], 2)
	assert.Equal(t, "200.00", body["total"])

	rec, _ = ts.do(t, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", r.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body = ts.do(t, http.MethodGet, fmt.Sprintf("/reservations/%d", r.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", body["status"])

	rec, _ = ts.do(t, http.MethodGet, "/reservations/12345", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
