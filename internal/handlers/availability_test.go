package handlers

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository/memory"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/service"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/logger"
)

const linkedChat = int64(-500)

func newTestService(t *testing.T) (*service.Service, *memory.Store, *models.Organization) {
	t.Helper()

	store := memory.NewStore()
	chat := linkedChat
	org := store.AddOrganization(&models.Organization{Name: "Lake_side", TelegramChatID: &chat}, nil)
	orgs, groups, reservations, payments, checkins := store.Repositories()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	svc := service.New(logger.Discard(), service.Repositories{
		Organizations: orgs,
		FamilyGroups:  groups,
		Reservations:  reservations,
		Payments:      payments,
		Checkins:      checkins,
	}, nil, service.Options{Now: func() time.Time { return now }})

	return svc, store, org
}

func book(store *memory.Store, orgID int64, group, start, end string) {
	s, _ := daterange.Parse(start)
	e, _ := daterange.Parse(end)
	store.AddReservation(&models.Reservation{OrganizationID: orgID, FamilyGroup: group, StartDate: s, EndDate: e})
}

func chatMessage(chatID int64) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, From: &tgbotapi.User{ID: 1}}
}

func TestAvailabilityHandler(t *testing.T) {
	svc, store, org := newTestService(t)
	book(store, org.ID, "Smith_Family", "2024-07-01", "2024-07-08")
	h := NewAvailabilityHandler(svc, logger.Discard())
	ctx := context.Background()

	tests := []struct {
		name    string
		chatID  int64
		args    []string
		contain string
	}{
		{"usage", linkedChat, []string{"2024-07-01"}, "Usage: /availability"},
		{"unlinked chat", 999, []string{"2024-07-01", "2024-07-03"}, "not linked"},
		{"bad date", linkedChat, []string{"July", "2024-07-03"}, "expected YYYY-MM-DD"},
		{"reversed", linkedChat, []string{"2024-07-05", "2024-07-03"}, "End date must be after start date"},
		{"taken", linkedChat, []string{"2024-07-05", "2024-07-10"}, `Smith\_Family: 2024-07-01 to 2024-07-08`},
		{"free with turnover", linkedChat, []string{"2024-07-08", "2024-07-10"}, "is available"},
		{"property", linkedChat, []string{"2024-07-10", "2024-07-12", "Lake", "House"}, "is available at Lake House"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := h.Handle(ctx, chatMessage(tt.chatID), tt.args)
			require.NoError(t, err)
			assert.Contains(t, reply, tt.contain)
		})
	}
}

func TestAlternativesHandler(t *testing.T) {
	svc, store, org := newTestService(t)
	book(store, org.ID, "Smith", "2024-07-01", "2024-07-08")
	h := NewAlternativesHandler(svc, logger.Discard())

	reply, err := h.Handle(context.Background(), chatMessage(linkedChat), []string{"2024-07-05", "2024-07-08"})
	require.NoError(t, err)

	assert.Contains(t, reply, "Free 3-night stays near 2024-07-05 to 2024-07-08")
	assert.Contains(t, reply, "• 2024-06-28 to 2024-07-01")
	assert.Contains(t, reply, "• 2024-07-08 to 2024-07-11")
}

func TestStartHandler(t *testing.T) {
	svc, store, org := newTestService(t)
	store.AddFamilyGroup(org.ID, "Smith")
	store.AddFamilyGroup(org.ID, "Jones")
	h := NewStartHandler(svc, logger.Discard())

	reply, err := h.Handle(context.Background(), chatMessage(linkedChat), nil)
	require.NoError(t, err)
	assert.Contains(t, reply, `Lake\_side`)
	assert.Contains(t, reply, "• Jones\n• Smith")

	reply, err = h.Handle(context.Background(), chatMessage(7), nil)
	require.NoError(t, err)
	assert.Contains(t, reply, "`7`")
}
