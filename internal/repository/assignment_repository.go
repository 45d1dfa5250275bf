package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trainhub/assignment-api/internal/models"
)

// AssignmentRepository handles persistence of assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, schedule_id, learner_id, course_id, session_key, group_key, group_number,
        training_location, functional_area, level, source, status, created_at`

// ListBySchedule returns every assignment for a schedule. Used to preload
// the capacity tracker and to categorize the roster in one query.
func (r *AssignmentRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE schedule_id = $1 ORDER BY created_at, id`, assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule assignments: %w", err)
	}
	return assignments, nil
}

// ListByLearner returns a learner's assignments within a schedule.
func (r *AssignmentRepository) ListByLearner(ctx context.Context, scheduleID, learnerID string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE schedule_id = $1 AND learner_id = $2 ORDER BY created_at, id`, assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, scheduleID, learnerID); err != nil {
		return nil, fmt.Errorf("list learner assignments: %w", err)
	}
	return assignments, nil
}

// List returns assignments filtered by the provided criteria.
func (r *AssignmentRepository) List(ctx context.Context, scheduleID string, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	conditions := []string{"schedule_id = $1"}
	args := []interface{}{scheduleID}

	if filter.LearnerID != "" {
		conditions = append(conditions, fmt.Sprintf("learner_id = $%d", len(args)+1))
		args = append(args, filter.LearnerID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("training_location = $%d", len(args)+1))
		args = append(args, filter.Location)
	}
	if filter.GroupNumber > 0 {
		conditions = append(conditions, fmt.Sprintf("group_number = $%d", len(args)+1))
		args = append(args, filter.GroupNumber)
	}
	if filter.Source != "" {
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(args)+1))
		args = append(args, filter.Source)
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM assignments%s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		assignmentColumns, clause, size, offset)

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM assignments" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// Insert persists a new assignment. A duplicate (schedule, learner, session
// key) is left untouched and reported via the bool so callers can treat it
// as already satisfied.
func (r *AssignmentRepository) Insert(ctx context.Context, assignment *models.Assignment) (bool, error) {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	if assignment.Status == "" {
		assignment.Status = models.StatusEnrolled
	}
	const query = `INSERT INTO assignments (id, schedule_id, learner_id, course_id, session_key, group_key, group_number,
        training_location, functional_area, level, source, status, created_at)
        VALUES (:id, :schedule_id, :learner_id, :course_id, :session_key, :group_key, :group_number,
        :training_location, :functional_area, :level, :source, :status, :created_at)
        ON CONFLICT (schedule_id, learner_id, session_key) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return false, fmt.Errorf("insert assignment: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert assignment result: %w", err)
	}
	return rows > 0, nil
}

// DeleteByGroup removes a learner's assignments for one group at a location.
func (r *AssignmentRepository) DeleteByGroup(ctx context.Context, scheduleID, learnerID, location string, groupNumber int) error {
	const query = `DELETE FROM assignments WHERE schedule_id = $1 AND learner_id = $2 AND training_location = $3 AND group_number = $4`
	if _, err := r.db.ExecContext(ctx, query, scheduleID, learnerID, location, groupNumber); err != nil {
		return fmt.Errorf("delete group assignments: %w", err)
	}
	return nil
}

// DeleteByCourse removes a learner's assignments for one course at a
// location, leaving other courses and locations untouched.
func (r *AssignmentRepository) DeleteByCourse(ctx context.Context, scheduleID, learnerID, courseID, location string) error {
	const query = `DELETE FROM assignments WHERE schedule_id = $1 AND learner_id = $2 AND course_id = $3 AND training_location = $4`
	if _, err := r.db.ExecContext(ctx, query, scheduleID, learnerID, courseID, location); err != nil {
		return fmt.Errorf("delete course assignments: %w", err)
	}
	return nil
}

// DeleteByCourseExceptGroup removes a learner's same-course assignments in
// every group other than the given one. Used for same-course reassignment.
func (r *AssignmentRepository) DeleteByCourseExceptGroup(ctx context.Context, scheduleID, learnerID, courseID string, groupNumber int) error {
	const query = `DELETE FROM assignments WHERE schedule_id = $1 AND learner_id = $2 AND course_id = $3 AND group_number <> $4`
	if _, err := r.db.ExecContext(ctx, query, scheduleID, learnerID, courseID, groupNumber); err != nil {
		return fmt.Errorf("delete conflicting course assignments: %w", err)
	}
	return nil
}

// DeleteBySchedule removes every assignment for a schedule.
func (r *AssignmentRepository) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	const query = `DELETE FROM assignments WHERE schedule_id = $1`
	if _, err := r.db.ExecContext(ctx, query, scheduleID); err != nil {
		return fmt.Errorf("delete schedule assignments: %w", err)
	}
	return nil
}

// CountDistinctLearners answers an individual group occupancy query; the
// capacity tracker falls back to this when no preload is available.
func (r *AssignmentRepository) CountDistinctLearners(ctx context.Context, scheduleID, location string, groupNumber int) (int, error) {
	const query = `SELECT COUNT(DISTINCT learner_id) FROM assignments WHERE schedule_id = $1 AND training_location = $2 AND group_number = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, scheduleID, location, groupNumber); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("count group occupancy: %w", err)
	}
	return count, nil
}
