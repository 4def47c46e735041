package service

import (
	"context"
	"testing"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservation(t *testing.T) {
	f := newFixture(t, "2024-06-01")
	f.book("Smith", "2024-07-01", "2024-07-08")
	ctx := context.Background()

	t.Run("books a free range", func(t *testing.T) {
		created, result, err := f.svc.CreateReservation(ctx, CreateReservationRequest{
			OrganizationID: f.org.ID,
			ActorID:        3,
			FamilyGroup:    "Jones",
			Range:          span("2024-07-08", "2024-07-12"),
			GuestCount:     4,
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.True(t, result.IsValid)
		assert.Len(t, result.Warnings, 1, "turnover with the Smiths")
		assert.Equal(t, models.ReservationStatusConfirmed, created.Status)
		require.NotNil(t, created.CreatedByID)
		assert.Equal(t, int64(3), *created.CreatedByID)
		assert.NotNil(t, f.store.Reservation(created.ID))
		assert.Equal(t, []models.NotificationType{models.NotificationReservationConfirmed}, f.notifications())
	})

	t.Run("rejects a conflicting range", func(t *testing.T) {
		created, result, err := f.svc.CreateReservation(ctx, CreateReservationRequest{
			OrganizationID: f.org.ID,
			FamilyGroup:    "Brown",
			Range:          span("2024-07-05", "2024-07-09"),
		})
		require.NoError(t, err)

		assert.Nil(t, created)
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("rejects an unknown family group", func(t *testing.T) {
		created, result, err := f.svc.CreateReservation(ctx, CreateReservationRequest{
			OrganizationID: f.org.ID,
			FamilyGroup:    "Nobody",
			Range:          span("2024-09-01", "2024-09-05"),
		})
		require.NoError(t, err)

		assert.Nil(t, created)
		assert.False(t, result.IsValid)
		assert.Equal(t, []string{`Family group "Nobody" does not exist`}, result.Errors)
	})
}

func TestUpdateReservationDates(t *testing.T) {
	f := newFixture(t, "2024-07-05")
	stay := f.book("Smith", "2024-07-01", "2024-07-08")
	f.book("Jones", "2024-07-12", "2024-07-15")
	ctx := context.Background()

	updated, result, err := f.svc.UpdateReservationDates(ctx, UpdateDatesRequest{
		OrganizationID: f.org.ID,
		ActorID:        3,
		ReservationID:  stay.ID,
		Range:          span("2024-07-01", "2024-07-12"),
	})
	require.NoError(t, err)
	require.True(t, result.IsValid, result.Errors)
	assert.Equal(t, "2024-07-01 to 2024-07-12", updated.Range().String())
	assert.Equal(t, "2024-07-01 to 2024-07-12", f.store.Reservation(stay.ID).Range().String())
	assert.Equal(t, []models.NotificationType{models.NotificationReservationUpdated}, f.notifications())

	updated, result, err = f.svc.UpdateReservationDates(ctx, UpdateDatesRequest{
		OrganizationID: f.org.ID,
		ReservationID:  stay.ID,
		Range:          span("2024-07-01", "2024-07-13"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, []string{"Conflicts with Jones's reservation from 2024-07-12 to 2024-07-15"}, result.Errors)

	_, _, err = f.svc.UpdateReservationDates(ctx, UpdateDatesRequest{
		OrganizationID: f.org.ID,
		ReservationID:  999,
		Range:          span("2024-07-01", "2024-07-13"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelReservation(t *testing.T) {
	f := newFixture(t, "2024-06-01")
	stay := f.book("Smith", "2024-07-01", "2024-07-08")
	ctx := context.Background()

	require.NoError(t, f.svc.CancelReservation(ctx, f.org.ID, 3, stay.ID))
	require.NoError(t, f.svc.CancelReservation(ctx, f.org.ID, 3, stay.ID))

	assert.Equal(t, models.ReservationStatusCancelled, f.store.Reservation(stay.ID).Status)
	assert.Equal(t, []models.NotificationType{models.NotificationReservationCancelled}, f.notifications())

	check := f.svc.Conflicts.DetectConflicts(ctx, ConflictQuery{
		OrganizationID: f.org.ID,
		Range:          span("2024-07-02", "2024-07-04"),
	})
	assert.Empty(t, check.Conflicts)

	_, result, err := f.svc.UpdateReservationDates(ctx, UpdateDatesRequest{
		OrganizationID: f.org.ID,
		ReservationID:  stay.ID,
		Range:          span("2024-07-02", "2024-07-04"),
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid)

	assert.ErrorIs(t, f.svc.CancelReservation(ctx, f.org.ID, 3, 999), ErrNotFound)
}

func TestListReservations(t *testing.T) {
	f := newFixture(t, "2024-06-01")
	f.book("Smith", "2024-07-01", "2024-07-08")
	f.book("Jones", "2024-08-01", "2024-08-08")
	ctx := context.Background()

	all, err := f.svc.ListReservations(ctx, f.org.ID, repository.ReservationFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	from, to := day("2024-07-07"), day("2024-07-20")
	window, err := f.svc.ListReservations(ctx, f.org.ID, repository.ReservationFilters{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "Smith", window[0].FamilyGroup)

	none, err := f.svc.ListReservations(ctx, f.org.ID+1, repository.ReservationFilters{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
