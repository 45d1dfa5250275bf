package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/assignment-api/internal/models"
)

func newAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func assignmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "schedule_id", "learner_id", "course_id", "session_key", "group_key", "group_number",
		"training_location", "functional_area", "level", "source", "status", "created_at",
	})
}

func TestAssignmentRepositoryListBySchedule(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := assignmentRows().
		AddRow("asg-1", "sched-1", "l1", "course-a", "course-a-1-north-safety", "North-Safety-Group1", 1,
			"North", "Safety", models.LevelSession, models.SourceManual, models.StatusEnrolled, time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM assignments WHERE schedule_id = \$1 ORDER BY created_at, id`).
		WithArgs("sched-1").
		WillReturnRows(rows)

	assignments, err := repo.ListBySchedule(context.Background(), "sched-1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, "course-a", assignments[0].CourseID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(`INSERT INTO assignments (.+) ON CONFLICT \(schedule_id, learner_id, session_key\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assignment := &models.Assignment{
		ScheduleID:       "sched-1",
		LearnerID:        "l1",
		CourseID:         "course-a",
		SessionKey:       "course-a-1-north-safety",
		GroupKey:         "North-Safety-Group1",
		GroupNumber:      1,
		TrainingLocation: "North",
		FunctionalArea:   "Safety",
		Level:            models.LevelSession,
		Source:           models.SourceManual,
	}
	inserted, err := repo.Insert(context.Background(), assignment)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NotEmpty(t, assignment.ID)
	require.Equal(t, models.StatusEnrolled, assignment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryInsertDuplicateNoOp(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(`INSERT INTO assignments`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Insert(context.Background(), &models.Assignment{
		ScheduleID: "sched-1",
		LearnerID:  "l1",
		SessionKey: "course-a-1-north-safety",
	})
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteByGroup(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(`DELETE FROM assignments WHERE schedule_id = \$1 AND learner_id = \$2 AND training_location = \$3 AND group_number = \$4`).
		WithArgs("sched-1", "l1", "North", 2).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByGroup(context.Background(), "sched-1", "l1", "North", 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteByCourse(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(`DELETE FROM assignments WHERE schedule_id = \$1 AND learner_id = \$2 AND course_id = \$3 AND training_location = \$4`).
		WithArgs("sched-1", "l1", "course-a", "North").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteByCourse(context.Background(), "sched-1", "l1", "course-a", "North"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCountDistinctLearners(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT learner_id\) FROM assignments WHERE schedule_id = \$1 AND training_location = \$2 AND group_number = \$3`).
		WithArgs("sched-1", "North", 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountDistinctLearners(context.Background(), "sched-1", "North", 1)
	require.NoError(t, err)
	require.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM assignments WHERE schedule_id = \$1 AND course_id = \$2 AND source = \$3 ORDER BY created_at DESC, id LIMIT 20 OFFSET 0`).
		WithArgs("sched-1", "course-a", models.SourceAutomatic).
		WillReturnRows(assignmentRows().
			AddRow("asg-1", "sched-1", "l1", "course-a", "course-a-1-north-safety", "North-Safety-Group1", 1,
				"North", "Safety", models.LevelSession, models.SourceAutomatic, models.StatusEnrolled, time.Now()))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM assignments WHERE schedule_id = \$1 AND course_id = \$2 AND source = \$3`).
		WithArgs("sched-1", "course-a", models.SourceAutomatic).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assignments, total, err := repo.List(context.Background(), "sched-1", models.AssignmentFilter{
		CourseID: "course-a",
		Source:   models.SourceAutomatic,
	})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
