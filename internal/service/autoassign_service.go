package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trainhub/assignment-api/internal/engine"
	"github.com/trainhub/assignment-api/internal/models"
	"github.com/trainhub/assignment-api/pkg/cache"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
	"github.com/trainhub/assignment-api/pkg/jobs"
)

// workItem is one placement the orchestrator owes a learner. An empty
// courseID means whole-group placement.
type workItem struct {
	learner  models.Learner
	courseID string
}

type runHandle struct {
	scheduleID string
	// actor is the authenticated user who started the run. Queue workers
	// execute on the process context, so the request-scoped actor must be
	// carried here for the authorizer to see it.
	actor     *models.JWTClaims
	cancelled atomic.Bool
}

// AutoAssignService drives the allocator across a full roster in strict
// priority order: needs-all-courses first, then needs-some-courses grouped
// by course, then eligible-unscoped learners (treated like needs-all).
// Cancellation is cooperative, checked between learners only; placements
// already made are kept.
type AutoAssignService struct {
	alloc    *AssignmentService
	progress *cache.ProgressStore
	queue    *jobs.Queue
	metrics  engineMetrics
	logger   *zap.Logger

	mu     sync.Mutex
	runs   map[string]*runHandle
	active map[string]string
}

// NewAutoAssignService constructs the orchestrator. Runs execute on an
// internal single-worker queue so two batches never mutate one schedule's
// capacity concurrently.
func NewAutoAssignService(alloc *AssignmentService, progress *cache.ProgressStore, buffer int, metrics engineMetrics, logger *zap.Logger) *AutoAssignService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AutoAssignService{
		alloc:    alloc,
		progress: progress,
		metrics:  metrics,
		logger:   logger,
		runs:     make(map[string]*runHandle),
		active:   make(map[string]string),
	}
	s.queue = jobs.NewQueue("auto-assign", s.execute, jobs.QueueConfig{
		Workers:    1,
		BufferSize: buffer,
		Logger:     logger,
	})
	return s
}

// Start begins queue consumption.
func (s *AutoAssignService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *AutoAssignService) Stop() {
	s.queue.Stop()
}

// StartRun enqueues an auto-assign run for a schedule and returns the
// initial progress snapshot. At most one run per schedule may be in flight.
func (s *AutoAssignService) StartRun(ctx context.Context, scheduleID string) (*models.AutoAssignProgress, error) {
	s.mu.Lock()
	if runID, busy := s.active[scheduleID]; busy {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("auto-assign run %s already in progress", runID))
	}
	runID := uuid.NewString()
	actor, _ := ActorFromContext(ctx)
	s.active[scheduleID] = runID
	s.runs[runID] = &runHandle{scheduleID: scheduleID, actor: actor}
	s.mu.Unlock()

	snapshot := &models.AutoAssignProgress{
		RunID:      runID,
		ScheduleID: scheduleID,
		State:      models.RunIdle,
		UpdatedAt:  time.Now().UTC(),
	}
	s.saveProgress(ctx, snapshot)

	if err := s.queue.Enqueue(jobs.Job{ID: runID, Type: "auto-assign", Payload: scheduleID}); err != nil {
		s.clearRun(scheduleID, runID)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue auto-assign run")
	}
	return snapshot, nil
}

// Progress returns the latest snapshot for a run.
func (s *AutoAssignService) Progress(ctx context.Context, runID string) (*models.AutoAssignProgress, error) {
	var snapshot models.AutoAssignProgress
	found, err := s.progress.Load(ctx, runID, &snapshot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load run progress")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "auto-assign run not found")
	}
	return &snapshot, nil
}

// Cancel flags a running batch for cooperative cancellation. The flag is
// honored between learners; the placement in flight completes first.
// Cancelling a finished run is a no-op.
func (s *AutoAssignService) Cancel(ctx context.Context, runID string) error {
	s.mu.Lock()
	handle, ok := s.runs[runID]
	s.mu.Unlock()
	if ok {
		handle.cancelled.Store(true)
		return nil
	}
	var snapshot models.AutoAssignProgress
	found, err := s.progress.Load(ctx, runID, &snapshot)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load run progress")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "auto-assign run not found")
	}
	return nil
}

func (s *AutoAssignService) execute(ctx context.Context, job jobs.Job) error {
	runID := job.ID
	scheduleID, _ := job.Payload.(string)
	defer s.clearRun(scheduleID, runID)

	if err := s.run(ctx, runID, scheduleID); err != nil {
		s.logger.Sugar().Errorw("auto-assign run failed", "run_id", runID, "schedule_id", scheduleID, "error", err)
		s.saveProgress(ctx, &models.AutoAssignProgress{
			RunID:      runID,
			ScheduleID: scheduleID,
			State:      models.RunFailed,
			UpdatedAt:  time.Now().UTC(),
		})
		s.metrics.AutoAssignFinished(models.RunFailed)
	}
	// A half-finished batch is never replayed by the queue; placements made
	// so far stand and the failure is reported through the progress store.
	return nil
}

func (s *AutoAssignService) run(ctx context.Context, runID, scheduleID string) error {
	s.mu.Lock()
	handle := s.runs[runID]
	s.mu.Unlock()
	if handle == nil {
		return fmt.Errorf("unknown run %s", runID)
	}
	if handle.actor != nil {
		ctx = WithActor(ctx, handle.actor)
	}

	batch, err := s.alloc.loadBatch(ctx, scheduleID)
	if err != nil {
		return err
	}
	roster, mappings, err := s.alloc.loadProjectData(ctx, batch.schedule.ProjectID)
	if err != nil {
		return err
	}
	cats := engine.Categorize(roster, mappings, batch.assignments, batch.schedule.RequiredCourseIDs)
	work := buildWorkList(cats, batch.schedule.RequiredCourseIDs)

	result := &models.AutoAssignResult{Successful: []string{}, Failed: []models.AssignmentFailure{}}
	succeeded := make(map[string]struct{})
	someCourseLearners := make(map[string]struct{})

	snapshot := &models.AutoAssignProgress{
		RunID:      runID,
		ScheduleID: scheduleID,
		State:      models.RunRunning,
		Total:      len(work),
		UpdatedAt:  time.Now().UTC(),
	}
	s.saveProgress(ctx, snapshot)

	for _, item := range work {
		if handle.cancelled.Load() {
			snapshot.State = models.RunCancelled
			snapshot.CurrentLearner = ""
			snapshot.Result = finishResult(result, cats, someCourseLearners, snapshot.Processed)
			snapshot.UpdatedAt = time.Now().UTC()
			s.saveProgress(ctx, snapshot)
			s.metrics.AutoAssignFinished(models.RunCancelled)
			s.logger.Sugar().Infow("auto-assign run cancelled", "run_id", runID, "processed", snapshot.Processed)
			return nil
		}

		snapshot.CurrentLearner = item.learner.FullName
		location := item.learner.HomeLocation

		var placeErr error
		session := representativeSession(batch.catalog, location, item.courseID)
		if err := s.alloc.authorizer.CanAssign(ctx, item.learner, session); err != nil {
			placeErr = err
		} else if item.courseID == "" {
			_, placeErr = s.alloc.assignWholeGroup(ctx, batch, item.learner, location, models.SourceAutomatic)
		} else {
			someCourseLearners[item.learner.ID] = struct{}{}
			_, placeErr = s.alloc.assignSingleCourse(ctx, batch, item.learner, item.courseID, location, 0, models.SourceAutomatic)
		}

		snapshot.Processed++
		if placeErr != nil {
			result.Failed = append(result.Failed, failureFor(item.learner, placeErr))
			snapshot.Failed++
		} else {
			if _, seen := succeeded[item.learner.ID]; !seen {
				succeeded[item.learner.ID] = struct{}{}
				result.Successful = append(result.Successful, item.learner.ID)
			}
			snapshot.Succeeded++
		}
		snapshot.UpdatedAt = time.Now().UTC()
		s.saveProgress(ctx, snapshot)
	}

	snapshot.State = models.RunCompleted
	snapshot.CurrentLearner = ""
	snapshot.Result = finishResult(result, cats, someCourseLearners, snapshot.Processed)
	snapshot.UpdatedAt = time.Now().UTC()
	s.saveProgress(ctx, snapshot)
	s.metrics.AutoAssignFinished(models.RunCompleted)
	s.logger.Sugar().Infow("auto-assign run completed",
		"run_id", runID, "schedule_id", scheduleID,
		"processed", snapshot.Processed, "succeeded", snapshot.Succeeded, "failed", snapshot.Failed)
	return nil
}

// buildWorkList orders placements by strict priority: needs-all learners,
// then needs-some learners per course in the schedule's course order, then
// eligible-unscoped learners treated like needs-all.
func buildWorkList(cats models.Categories, requiredCourseIDs []string) []workItem {
	var work []workItem
	for _, learner := range cats.NeedsAllCourses {
		work = append(work, workItem{learner: learner})
	}
	for _, courseID := range requiredCourseIDs {
		for _, learner := range cats.NeedsSomeCourses[courseID] {
			work = append(work, workItem{learner: learner, courseID: courseID})
		}
	}
	for _, learner := range cats.EligibleUnscoped {
		work = append(work, workItem{learner: learner})
	}
	return work
}

// representativeSession returns the first catalog session the placement
// will draw from, so the authorizer evaluates the real target rather than a
// blank. An empty courseID matches any course at the location.
func representativeSession(catalog []models.CatalogSession, location, courseID string) models.CatalogSession {
	for _, cs := range catalog {
		if cs.TrainingLocation != location {
			continue
		}
		if courseID != "" && cs.Session.CourseID != courseID {
			continue
		}
		return cs
	}
	return models.CatalogSession{}
}

func finishResult(result *models.AutoAssignResult, cats models.Categories, someCourseLearners map[string]struct{}, processed int) *models.AutoAssignResult {
	result.Summary = models.AutoAssignCounts{
		AllCoursesCount:  len(cats.NeedsAllCourses) + len(cats.EligibleUnscoped),
		SomeCoursesCount: len(someCourseLearners),
		TotalProcessed:   processed,
	}
	return result
}

// saveProgress is best effort: a lost snapshot never fails the run.
func (s *AutoAssignService) saveProgress(ctx context.Context, snapshot *models.AutoAssignProgress) {
	if err := s.progress.Save(ctx, snapshot.RunID, snapshot); err != nil {
		s.logger.Sugar().Warnw("failed to save run progress", "run_id", snapshot.RunID, "error", err)
	}
}

func (s *AutoAssignService) clearRun(scheduleID, runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	if s.active[scheduleID] == runID {
		delete(s.active, scheduleID)
	}
}
