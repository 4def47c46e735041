package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
)

type familyGroupRepository struct {
	db *sql.DB
}

// NewFamilyGroupRepository creates a new family group repository
func NewFamilyGroupRepository(db *sql.DB) repository.FamilyGroupRepository {
	return &familyGroupRepository{db: db}
}

func (r *familyGroupRepository) GetByName(ctx context.Context, organizationID int64, name string) (*models.FamilyGroup, error) {
	query := `
		SELECT id, organization_id, name, created_at
		FROM family_groups
		WHERE organization_id = $1 AND name = $2`

	group := &models.FamilyGroup{}
	err := r.db.QueryRowContext(ctx, query, organizationID, name).Scan(
		&group.ID,
		&group.OrganizationID,
		&group.Name,
		&group.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family group by name: %w", err)
	}

	return group, nil
}

func (r *familyGroupRepository) List(ctx context.Context, organizationID int64) ([]*models.FamilyGroup, error) {
	query := `
		SELECT id, organization_id, name, created_at
		FROM family_groups
		WHERE organization_id = $1
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.FamilyGroup
	for rows.Next() {
		group := &models.FamilyGroup{}
		if err := rows.Scan(
			&group.ID,
			&group.OrganizationID,
			&group.Name,
			&group.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family group: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}
