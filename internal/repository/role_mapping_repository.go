package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trainhub/assignment-api/internal/models"
)

// RoleMappingRepository loads role-to-course requirement mappings.
type RoleMappingRepository struct {
	db *sqlx.DB
}

// NewRoleMappingRepository constructs the repository.
func NewRoleMappingRepository(db *sqlx.DB) *RoleMappingRepository {
	return &RoleMappingRepository{db: db}
}

// ListByProject returns every role-course mapping for a project.
func (r *RoleMappingRepository) ListByProject(ctx context.Context, projectID string) ([]models.RoleCourseMapping, error) {
	const query = `SELECT id, project_id, role, course_id FROM role_course_mappings
        WHERE project_id = $1 ORDER BY role, course_id`
	var mappings []models.RoleCourseMapping
	if err := r.db.SelectContext(ctx, &mappings, query, projectID); err != nil {
		return nil, fmt.Errorf("list role mappings: %w", err)
	}
	return mappings, nil
}
