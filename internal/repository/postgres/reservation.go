package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/shopspring/decimal"
)

const reservationColumns = `id, organization_id, family_group, property_name, start_date, end_date, guest_count, status,
		time_period_number, allocated_start_date, allocated_end_date, total_cost, reminder_sent_at,
		created_by_id, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

type reservationRepository struct {
	db *sql.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	res := &models.Reservation{}
	var timePeriod sql.NullInt32
	err := row.Scan(
		&res.ID,
		&res.OrganizationID,
		&res.FamilyGroup,
		&res.PropertyName,
		&res.StartDate,
		&res.EndDate,
		&res.GuestCount,
		&res.Status,
		&timePeriod,
		&res.AllocatedStartDate,
		&res.AllocatedEndDate,
		&res.TotalCost,
		&res.ReminderSentAt,
		&res.CreatedByID,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if timePeriod.Valid {
		n := int(timePeriod.Int32)
		res.TimePeriodNumber = &n
	}
	return res, nil
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	query := `
		INSERT INTO reservations (organization_id, family_group, property_name, start_date, end_date, guest_count, status,
			time_period_number, allocated_start_date, allocated_end_date, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	if reservation.Status == "" {
		reservation.Status = models.ReservationStatusConfirmed
	}

	err := r.db.QueryRowContext(ctx, query,
		reservation.OrganizationID,
		reservation.FamilyGroup,
		reservation.PropertyName,
		dateArg(reservation.StartDate),
		dateArg(reservation.EndDate),
		reservation.GuestCount,
		reservation.Status,
		reservation.TimePeriodNumber,
		nullDateArg(reservation.AllocatedStartDate),
		nullDateArg(reservation.AllocatedEndDate),
		reservation.CreatedByID,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return reservation, nil
}

func (r *reservationRepository) GetByID(ctx context.Context, organizationID, id int64) (*models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE organization_id = $1 AND id = $2`

	res, err := scanReservation(r.db.QueryRowContext(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return res, nil
}

func (r *reservationRepository) List(ctx context.Context, organizationID int64, filters repository.ReservationFilters) ([]*models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE organization_id = $1`
	args := []interface{}{organizationID}
	argIdx := 2

	// From/To select stays that are at least partly inside the window.
	if filters.From != nil {
		query += fmt.Sprintf(" AND end_date > $%d", argIdx)
		args = append(args, dateArg(*filters.From))
		argIdx++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND start_date < $%d", argIdx)
		args = append(args, dateArg(*filters.To))
		argIdx++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filters.Status)
		argIdx++
	}

	query += " ORDER BY start_date ASC, id ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	return r.query(ctx, query, args...)
}

func (r *reservationRepository) ListConfirmed(ctx context.Context, organizationID int64, filters repository.ConflictFilters) ([]*models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE organization_id = $1 AND status = $2`
	args := []interface{}{organizationID, models.ReservationStatusConfirmed}
	argIdx := 3

	if filters.PropertyName != nil {
		query += fmt.Sprintf(" AND (property_name = $%d OR property_name = '')", argIdx)
		args = append(args, *filters.PropertyName)
		argIdx++
	}
	if filters.ExcludeReservationID != nil {
		query += fmt.Sprintf(" AND id <> $%d", argIdx)
		args = append(args, *filters.ExcludeReservationID)
	}

	query += " ORDER BY start_date ASC, id ASC"

	return r.query(ctx, query, args...)
}

func (r *reservationRepository) ListStartingOn(ctx context.Context, day time.Time) ([]*models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1 AND start_date = $2 AND reminder_sent_at IS NULL
		ORDER BY organization_id ASC, id ASC`

	return r.query(ctx, query, models.ReservationStatusConfirmed, dateArg(day))
}

func (r *reservationRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

func (r *reservationRepository) UpdateDates(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	query := `
		UPDATE reservations
		SET start_date = $3, end_date = $4, guest_count = $5, property_name = $6, updated_at = $7
		WHERE organization_id = $1 AND id = $2
		RETURNING updated_at`

	reservation.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		reservation.OrganizationID,
		reservation.ID,
		dateArg(reservation.StartDate),
		dateArg(reservation.EndDate),
		reservation.GuestCount,
		reservation.PropertyName,
		reservation.UpdatedAt,
	).Scan(&reservation.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to update reservation dates: %w", err)
	}

	return reservation, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, organizationID, id int64, status models.ReservationStatus) error {
	query := `
		UPDATE reservations
		SET status = $3, updated_at = $4
		WHERE organization_id = $1 AND id = $2`

	return r.execOne(ctx, "update reservation status", query, organizationID, id, status, time.Now())
}

func (r *reservationRepository) UpdateTotalCost(ctx context.Context, organizationID, id int64, total decimal.Decimal) error {
	query := `
		UPDATE reservations
		SET total_cost = $3, updated_at = $4
		WHERE organization_id = $1 AND id = $2`

	return r.execOne(ctx, "update reservation total cost", query, organizationID, id, total, time.Now())
}

func (r *reservationRepository) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE reservations
		SET reminder_sent_at = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("reservation with ID %d not found: %w", id, repository.ErrNotFound)
	}

	return nil
}

func (r *reservationRepository) execOne(ctx context.Context, op, query string, organizationID, id int64, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, append([]interface{}{organizationID, id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("reservation with ID %d not found: %w", id, repository.ErrNotFound)
	}

	return nil
}
