package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/assignment-api/internal/models"
	"github.com/trainhub/assignment-api/pkg/cache"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

func newAutoAssignFixture(catalog models.SessionCatalog, capacity int, learners ...models.Learner) (*fixture, *AutoAssignService) {
	f := newFixture(catalog, capacity, learners...)
	svc := NewAutoAssignService(f.svc, cache.NewProgressStore(nil, 0), 4, nil, nil)
	return f, svc
}

func runSynchronously(t *testing.T, svc *AutoAssignService, runID, scheduleID string) {
	t.Helper()
	svc.mu.Lock()
	svc.runs[runID] = &runHandle{scheduleID: scheduleID}
	svc.mu.Unlock()
	require.NoError(t, svc.run(context.Background(), runID, scheduleID))
}

func TestAutoAssignTwoLearnersTwoGroups(t *testing.T) {
	f, svc := newAutoAssignFixture(northCatalog(), 1, operator("l1", "Learner One"), operator("l2", "Learner Two"))

	runSynchronously(t, svc, "run-1", "sched-1")

	progress, err := svc.Progress(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, progress.State)
	require.NotNil(t, progress.Result)
	assert.ElementsMatch(t, []string{"l1", "l2"}, progress.Result.Successful)
	assert.Empty(t, progress.Result.Failed)
	assert.Equal(t, 2, progress.Result.Summary.AllCoursesCount)
	assert.Equal(t, 2, progress.Result.Summary.TotalProcessed)

	// Two learners, two courses each: four records, one group per learner.
	require.Len(t, f.store.assignments, 4)
	groupsByLearner := make(map[string]map[int]bool)
	for _, a := range f.store.assignments {
		assert.Equal(t, models.SourceAutomatic, a.Source)
		if groupsByLearner[a.LearnerID] == nil {
			groupsByLearner[a.LearnerID] = make(map[int]bool)
		}
		groupsByLearner[a.LearnerID][a.GroupNumber] = true
	}
	assert.Equal(t, map[int]bool{1: true}, groupsByLearner["l1"])
	assert.Equal(t, map[int]bool{2: true}, groupsByLearner["l2"])
}

func TestAutoAssignMissingCourseInSecondGroup(t *testing.T) {
	// Group 2 offers course A only; no complete group remains for learner 2.
	catalog := models.SessionCatalog{Flat: []models.Session{
		{CourseID: "course-a", CourseName: "Course A", Sequence: 1, Location: "North Centre", FunctionalArea: "Safety", Title: "Course A - Group 1"},
		{CourseID: "course-b", CourseName: "Course B", Sequence: 1, Location: "North Centre", FunctionalArea: "Safety", Title: "Course B - Group 1"},
		{CourseID: "course-a", CourseName: "Course A", Sequence: 2, Location: "North Centre", FunctionalArea: "Safety", Title: "Course A - Group 2"},
	}}
	f, svc := newAutoAssignFixture(catalog, 1, operator("l1", "Learner One"), operator("l2", "Learner Two"))

	runSynchronously(t, svc, "run-1", "sched-1")

	progress, err := svc.Progress(context.Background(), "run-1")
	require.NoError(t, err)
	require.NotNil(t, progress.Result)
	assert.Equal(t, []string{"l1"}, progress.Result.Successful)
	require.Len(t, progress.Result.Failed, 1)
	assert.Equal(t, "l2", progress.Result.Failed[0].LearnerID)
	assert.Equal(t, appErrors.ErrNoCapacity.Code, progress.Result.Failed[0].Code)
	assert.Len(t, f.store.assignments, 2)
}

func TestAutoAssignCancelledBetweenLearners(t *testing.T) {
	f, svc := newAutoAssignFixture(northCatalog(), 1, operator("l1", "Learner One"), operator("l2", "Learner Two"))

	svc.mu.Lock()
	handle := &runHandle{scheduleID: "sched-1"}
	handle.cancelled.Store(true)
	svc.runs["run-1"] = handle
	svc.mu.Unlock()

	require.NoError(t, svc.run(context.Background(), "run-1", "sched-1"))

	progress, err := svc.Progress(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunCancelled, progress.State)
	assert.Zero(t, progress.Processed)
	assert.Empty(t, f.store.assignments)
}

func TestAutoAssignIsolatesAuthorizationDenial(t *testing.T) {
	f, svc := newAutoAssignFixture(northCatalog(), 25, operator("l1", "Learner One"), operator("l2", "Learner Two"))
	f.authorizer.denyAssign["l1"] = true

	runSynchronously(t, svc, "run-1", "sched-1")

	progress, err := svc.Progress(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, progress.State)
	require.NotNil(t, progress.Result)
	assert.Equal(t, []string{"l2"}, progress.Result.Successful)
	require.Len(t, progress.Result.Failed, 1)
	assert.Equal(t, appErrors.ErrAuthorizationDenied.Code, progress.Result.Failed[0].Code)
	assert.Len(t, f.store.assignments, 2)
}

func TestAutoAssignRunCarriesInitiatingActor(t *testing.T) {
	f := newFixture(northCatalog(), 25, operator("l1", "Learner One"))
	f.svc = NewAssignmentService(f.store, f.schedules, f.roster, f.mappings, NewRoleAuthorizer(), nil, 0, nil, nil)
	svc := NewAutoAssignService(f.svc, cache.NewProgressStore(nil, 0), 4, nil, nil)

	// The queue runs on a process-level context, exactly as in production;
	// the run must still see the admin who started it, not a blank actor.
	svc.Start(context.Background())
	defer svc.Stop()

	actorCtx := WithActor(context.Background(), &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})
	snapshot, err := svc.StartRun(actorCtx, "sched-1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		p, err := svc.Progress(context.Background(), snapshot.RunID)
		return err == nil && p.State == models.RunCompleted
	}, 2*time.Second, 10*time.Millisecond)

	progress, err := svc.Progress(context.Background(), snapshot.RunID)
	require.NoError(t, err)
	require.NotNil(t, progress.Result)
	assert.Equal(t, []string{"l1"}, progress.Result.Successful)
	assert.Empty(t, progress.Result.Failed)
	assert.Len(t, f.store.assignments, 2)
}

func TestAutoAssignStartRunConflict(t *testing.T) {
	_, svc := newAutoAssignFixture(northCatalog(), 25, operator("l1", "Learner One"))

	svc.mu.Lock()
	svc.active["sched-1"] = "run-0"
	svc.runs["run-0"] = &runHandle{scheduleID: "sched-1"}
	svc.mu.Unlock()

	_, err := svc.StartRun(context.Background(), "sched-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestAutoAssignProgressUnknownRun(t *testing.T) {
	_, svc := newAutoAssignFixture(northCatalog(), 25)

	_, err := svc.Progress(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	err = svc.Cancel(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
