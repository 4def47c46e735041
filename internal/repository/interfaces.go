package repository

import (
	"context"
	"errors"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by updates that matched no row
var ErrNotFound = errors.New("record not found")

// Every method taking an organizationID only touches rows of that
// organization. Lookups that find nothing return (nil, nil).

// OrganizationRepository defines the interface for organization data operations
type OrganizationRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.Organization, error)
	GetSettings(ctx context.Context, organizationID int64) (*models.ReservationSettings, error)
}

// FamilyGroupRepository defines the interface for family group lookups
type FamilyGroupRepository interface {
	GetByName(ctx context.Context, organizationID int64, name string) (*models.FamilyGroup, error)
	List(ctx context.Context, organizationID int64) ([]*models.FamilyGroup, error)
}

// ReservationRepository defines the interface for reservation data operations
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	GetByID(ctx context.Context, organizationID, id int64) (*models.Reservation, error)
	List(ctx context.Context, organizationID int64, filters ReservationFilters) ([]*models.Reservation, error)
	// ListConfirmed returns the confirmed reservations conflict checks run
	// against. A property filter also matches reservations without a property.
	ListConfirmed(ctx context.Context, organizationID int64, filters ConflictFilters) ([]*models.Reservation, error)
	// ListStartingOn returns confirmed reservations of every organization
	// starting on day that have not been reminded yet.
	ListStartingOn(ctx context.Context, day time.Time) ([]*models.Reservation, error)
	UpdateDates(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, organizationID, id int64, status models.ReservationStatus) error
	UpdateTotalCost(ctx context.Context, organizationID, id int64, total decimal.Decimal) error
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	ListByReservation(ctx context.Context, organizationID, reservationID int64) (models.PaymentSet, error)
	// UpdateBilling writes amount, split_role and daily_occupancy together, but
	// only while the row is unlocked. It reports false when the row was locked.
	UpdateBilling(ctx context.Context, payment *models.Payment) (bool, error)
	// UpdateOccupancy writes only the daily_occupancy snapshot.
	UpdateOccupancy(ctx context.Context, organizationID, id int64, occupancy models.DailyOccupancy) error
	// RecordPaid adds amount to amount_paid and locks billing.
	RecordPaid(ctx context.Context, organizationID, id int64, amount decimal.Decimal) (*models.Payment, error)
	Delete(ctx context.Context, organizationID, id int64) error
}

// CheckinSessionRepository defines the interface for check-in session operations
type CheckinSessionRepository interface {
	ListByRange(ctx context.Context, organizationID int64, familyGroup string, from, to time.Time) ([]*models.CheckinSession, error)
	UpdateResponses(ctx context.Context, session *models.CheckinSession) error
}

// ReservationFilters represents filters for listing reservations
type ReservationFilters struct {
	From   *time.Time
	To     *time.Time
	Status *models.ReservationStatus
	Limit  int
}

// ConflictFilters narrows the reservations a conflict check compares against
type ConflictFilters struct {
	PropertyName         *string
	ExcludeReservationID *int64
}
