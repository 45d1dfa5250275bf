package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScheduleRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "project_id", "name", "group_capacity", "required_course_ids", "nested_catalog", "created_at"}).
		AddRow("sched-1", "proj-1", "Go-Live Wave 1", 25, pq.StringArray{"course-a", "course-b"}, []byte("null"), time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM schedules WHERE id = \$1`).
		WithArgs("sched-1").
		WillReturnRows(rows)

	schedule, err := repo.FindByID(context.Background(), "sched-1")
	require.NoError(t, err)
	require.Equal(t, "Go-Live Wave 1", schedule.Name)
	require.Equal(t, []string{"course-a", "course-b"}, []string(schedule.RequiredCourseIDs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM schedules WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	schedule, err := repo.FindByID(context.Background(), "missing")
	require.Nil(t, schedule)
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCatalogDecodesNested(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	sessionRows := sqlmock.NewRows([]string{
		"course_id", "course_name", "sequence", "functional_area", "location", "classroom", "location_key",
		"title", "starts_at", "ends_at", "max_participants",
	}).AddRow("course-a", "Course A", 1, "Safety", "North", "Room 1", "", "Course A - Group 1", time.Now(), time.Now(), 0)
	mock.ExpectQuery(`SELECT (.+) FROM schedule_sessions WHERE schedule_id = \$1`).
		WithArgs("sched-1").
		WillReturnRows(sessionRows)

	schedule := &models.Schedule{
		ID:            "sched-1",
		NestedCatalog: types.JSONText(`{"Safety":{"South":{"Room 9":[{"course_id":"course-b","sequence":1,"title":"Course B - Group 1"}]}}}`),
	}
	catalog, err := repo.Catalog(context.Background(), schedule)
	require.NoError(t, err)
	require.Len(t, catalog.Flat, 1)
	require.Equal(t, "course-a", catalog.Flat[0].CourseID)
	require.Len(t, catalog.Nested["Safety"]["South"]["Room 9"], 1)
	require.Equal(t, "course-b", catalog.Nested["Safety"]["South"]["Room 9"][0].CourseID)
	require.NoError(t, mock.ExpectationsWereMet())
}
