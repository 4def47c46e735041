package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
)

type checkinSessionRepository struct {
	db *sql.DB
}

// NewCheckinSessionRepository creates a new check-in session repository
func NewCheckinSessionRepository(db *sql.DB) repository.CheckinSessionRepository {
	return &checkinSessionRepository{db: db}
}

func (r *checkinSessionRepository) ListByRange(ctx context.Context, organizationID int64, familyGroup string, from, to time.Time) ([]*models.CheckinSession, error) {
	query := `
		SELECT id, organization_id, family_group, check_date, checklist_responses, created_at, updated_at
		FROM checkin_sessions
		WHERE organization_id = $1 AND family_group = $2 AND check_date >= $3 AND check_date < $4
		ORDER BY check_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, organizationID, familyGroup, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query checkin sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.CheckinSession
	for rows.Next() {
		session := &models.CheckinSession{}
		if err := rows.Scan(
			&session.ID,
			&session.OrganizationID,
			&session.FamilyGroup,
			&session.CheckDate,
			&session.ChecklistResponses,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan checkin session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func (r *checkinSessionRepository) UpdateResponses(ctx context.Context, session *models.CheckinSession) error {
	query := `
		UPDATE checkin_sessions
		SET checklist_responses = $3, updated_at = $4
		WHERE organization_id = $1 AND id = $2`

	session.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		session.OrganizationID,
		session.ID,
		session.ChecklistResponses,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update checkin session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("checkin session with ID %d not found: %w", session.ID, repository.ErrNotFound)
	}

	return nil
}
