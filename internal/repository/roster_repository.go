package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

// RosterRepository loads learners for a project.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

const learnerColumns = `id, project_id, full_name, role, home_location, active, created_at`

// FindByID returns a single learner.
func (r *RosterRepository) FindByID(ctx context.Context, id string) (*models.Learner, error) {
	query := fmt.Sprintf(`SELECT %s FROM learners WHERE id = $1`, learnerColumns)
	var learner models.Learner
	if err := r.db.GetContext(ctx, &learner, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, fmt.Errorf("find learner: %w", err)
	}
	return &learner, nil
}

// FindByIDs returns the learners matching the given IDs, keyed by ID.
// Missing IDs are simply absent from the result.
func (r *RosterRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Learner, error) {
	if len(ids) == 0 {
		return map[string]models.Learner{}, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM learners WHERE id IN (?)`, learnerColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build learner query: %w", err)
	}
	query = r.db.Rebind(query)
	var learners []models.Learner
	if err := r.db.SelectContext(ctx, &learners, query, args...); err != nil {
		return nil, fmt.Errorf("find learners: %w", err)
	}
	byID := make(map[string]models.Learner, len(learners))
	for _, l := range learners {
		byID[l.ID] = l
	}
	return byID, nil
}

// ListByProject returns a project's active roster with optional filters.
func (r *RosterRepository) ListByProject(ctx context.Context, projectID string, filter models.RosterFilter) ([]models.Learner, error) {
	conditions := []string{"project_id = $1", "active = TRUE"}
	args := []interface{}{projectID}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("home_location = $%d", len(args)+1))
		args = append(args, filter.Location)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("full_name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	query := fmt.Sprintf(`SELECT %s FROM learners WHERE %s ORDER BY full_name, id`,
		learnerColumns, strings.Join(conditions, " AND "))
	var learners []models.Learner
	if err := r.db.SelectContext(ctx, &learners, query, args...); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return learners, nil
}
