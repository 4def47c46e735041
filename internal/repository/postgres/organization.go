package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
)

type organizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	query := `
		SELECT id, name, telegram_chat_id, created_at, updated_at
		FROM organizations
		WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *organizationRepository) GetByChatID(ctx context.Context, chatID int64) (*models.Organization, error) {
	query := `
		SELECT id, name, telegram_chat_id, created_at, updated_at
		FROM organizations
		WHERE telegram_chat_id = $1`

	return r.getOne(ctx, query, chatID)
}

func (r *organizationRepository) getOne(ctx context.Context, query string, arg int64) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&org.ID,
		&org.Name,
		&org.TelegramChatID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

func (r *organizationRepository) GetSettings(ctx context.Context, organizationID int64) (*models.ReservationSettings, error) {
	query := `
		SELECT organization_id, financial_method, nightly_rate, tax_rate, updated_at
		FROM reservation_settings
		WHERE organization_id = $1`

	settings := &models.ReservationSettings{}
	err := r.db.QueryRowContext(ctx, query, organizationID).Scan(
		&settings.OrganizationID,
		&settings.FinancialMethod,
		&settings.NightlyRate,
		&settings.TaxRate,
		&settings.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reservation settings: %w", err)
	}

	return settings, nil
}
