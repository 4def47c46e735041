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

const paymentColumns = `id, reservation_id, organization_id, family_group, split_role, amount, amount_paid,
		daily_occupancy, billing_locked, status, due_date, created_at, updated_at`

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID,
		&p.ReservationID,
		&p.OrganizationID,
		&p.FamilyGroup,
		&p.SplitRole,
		&p.Amount,
		&p.AmountPaid,
		&p.DailyOccupancy,
		&p.BillingLocked,
		&p.Status,
		&p.DueDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	query := `
		INSERT INTO payments (reservation_id, organization_id, family_group, split_role, amount, amount_paid,
			daily_occupancy, billing_locked, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	if payment.SplitRole == "" {
		payment.SplitRole = models.SplitRoleFull
	}

	err := r.db.QueryRowContext(ctx, query,
		payment.ReservationID,
		payment.OrganizationID,
		payment.FamilyGroup,
		payment.SplitRole,
		payment.Amount,
		payment.AmountPaid,
		payment.DailyOccupancy,
		payment.BillingLocked,
		payment.Status,
		nullDateArg(payment.DueDate),
		payment.CreatedAt,
		payment.UpdatedAt,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

func (r *paymentRepository) ListByReservation(ctx context.Context, organizationID, reservationID int64) (models.PaymentSet, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE organization_id = $1 AND reservation_id = $2
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, organizationID, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments models.PaymentSet
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

func (r *paymentRepository) UpdateBilling(ctx context.Context, payment *models.Payment) (bool, error) {
	// The lock condition is part of the WHERE clause so a payment recorded
	// between our read and this write is never repriced.
	query := `
		UPDATE payments
		SET amount = $3, daily_occupancy = $4, updated_at = $5, split_role = $6
		WHERE organization_id = $1 AND id = $2 AND billing_locked = FALSE AND amount_paid = 0
		RETURNING updated_at`

	updatedAt := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		payment.OrganizationID,
		payment.ID,
		payment.Amount,
		payment.DailyOccupancy,
		updatedAt,
		payment.SplitRole,
	).Scan(&payment.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update payment billing: %w", err)
	}

	return true, nil
}

func (r *paymentRepository) UpdateOccupancy(ctx context.Context, organizationID, id int64, occupancy models.DailyOccupancy) error {
	query := `
		UPDATE payments
		SET daily_occupancy = $3, updated_at = $4
		WHERE organization_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, organizationID, id, occupancy, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update payment occupancy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("payment with ID %d not found: %w", id, repository.ErrNotFound)
	}

	return nil
}

func (r *paymentRepository) RecordPaid(ctx context.Context, organizationID, id int64, amount decimal.Decimal) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET amount_paid = amount_paid + $3,
			billing_locked = TRUE,
			status = CASE WHEN amount_paid + $3 >= amount THEN 'paid' ELSE 'partial' END,
			updated_at = $4
		WHERE organization_id = $1 AND id = $2
		RETURNING ` + paymentColumns

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, organizationID, id, amount, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment with ID %d not found: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return p, nil
}

func (r *paymentRepository) Delete(ctx context.Context, organizationID, id int64) error {
	query := `DELETE FROM payments WHERE organization_id = $1 AND id = $2 AND billing_locked = FALSE AND amount_paid = 0`

	result, err := r.db.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("unlocked payment with ID %d not found: %w", id, repository.ErrNotFound)
	}

	return nil
}
