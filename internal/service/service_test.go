package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository/memory"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) types() []models.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	var types []models.NotificationType
	for _, s := range n.sent {
		types = append(types, s.Type)
	}
	return types
}

type fixture struct {
	svc        *Service
	store      *memory.Store
	dispatcher *Dispatcher
	notifier   *recordingNotifier
	org        *models.Organization
}

// newFixture builds a service over an in-memory store whose clock reads 09:00
// on the given day. The organization bills $25 per guest night without tax
// and has the family groups Smith, Jones and Brown.
func newFixture(t *testing.T, today string) *fixture {
	t.Helper()

	store := memory.NewStore()
	org := store.AddOrganization(&models.Organization{Name: "Lakeside"}, &models.ReservationSettings{
		FinancialMethod: models.FinancialMethodPerPersonPerNight,
		NightlyRate:     decimal.NewFromInt(25),
		TaxRate:         decimal.Zero,
	})
	for _, name := range []string{"Smith", "Jones", "Brown"} {
		store.AddFamilyGroup(org.ID, name)
	}

	orgs, groups, reservations, payments, checkins := store.Repositories()
	notifier := &recordingNotifier{}
	dispatcher := NewDispatcher(notifier, logger.Discard(), time.Second)
	now := day(today).Add(9 * time.Hour)

	svc := New(logger.Discard(), Repositories{
		Organizations: orgs,
		FamilyGroups:  groups,
		Reservations:  reservations,
		Payments:      payments,
		Checkins:      checkins,
	}, dispatcher, Options{
		StoreTimeout: time.Second,
		Now:          func() time.Time { return now },
	})

	return &fixture{svc: svc, store: store, dispatcher: dispatcher, notifier: notifier, org: org}
}

// book stores a confirmed reservation without validation
func (f *fixture) book(group, start, end string) *models.Reservation {
	return f.store.AddReservation(&models.Reservation{
		OrganizationID: f.org.ID,
		FamilyGroup:    group,
		StartDate:      day(start),
		EndDate:        day(end),
		GuestCount:     2,
		Status:         models.ReservationStatusConfirmed,
	})
}

func (f *fixture) notifications() []models.NotificationType {
	f.dispatcher.Wait()
	return f.notifier.types()
}

func day(s string) time.Time {
	t, err := daterange.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func span(start, end string) daterange.Range {
	return daterange.New(day(start), day(end))
}

func assertAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s", want, got.String())
}
