package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

// ScheduleRepository loads schedules and their session catalogs.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByID returns a schedule by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	const query = `SELECT id, project_id, name, group_capacity, required_course_ids, nested_catalog, created_at
        FROM schedules WHERE id = $1`
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return &schedule, nil
}

// List returns schedules for a project.
func (r *ScheduleRepository) List(ctx context.Context, projectID string) ([]models.Schedule, error) {
	const query = `SELECT id, project_id, name, group_capacity, required_course_ids, nested_catalog, created_at
        FROM schedules WHERE project_id = $1 ORDER BY created_at DESC`
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, projectID); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// Catalog assembles a schedule's session catalog. Row-backed sessions form
// the flat list; a stored nested catalog document, when present, is decoded
// alongside it.
func (r *ScheduleRepository) Catalog(ctx context.Context, schedule *models.Schedule) (models.SessionCatalog, error) {
	const query = `SELECT course_id, course_name, sequence, functional_area, location, classroom, location_key,
        title, starts_at, ends_at, max_participants
        FROM schedule_sessions WHERE schedule_id = $1 ORDER BY course_id, sequence, location`
	var catalog models.SessionCatalog
	if err := r.db.SelectContext(ctx, &catalog.Flat, query, schedule.ID); err != nil {
		return models.SessionCatalog{}, fmt.Errorf("list schedule sessions: %w", err)
	}
	if len(schedule.NestedCatalog) > 0 && string(schedule.NestedCatalog) != "null" {
		if err := json.Unmarshal(schedule.NestedCatalog, &catalog.Nested); err != nil {
			return models.SessionCatalog{}, fmt.Errorf("decode nested catalog: %w", err)
		}
	}
	return catalog, nil
}
