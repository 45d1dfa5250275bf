package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trainhub/assignment-api/internal/engine"
	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

type assignmentStore interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.Assignment, error)
	ListByLearner(ctx context.Context, scheduleID, learnerID string) ([]models.Assignment, error)
	List(ctx context.Context, scheduleID string, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	Insert(ctx context.Context, assignment *models.Assignment) (bool, error)
	DeleteByGroup(ctx context.Context, scheduleID, learnerID, location string, groupNumber int) error
	DeleteByCourse(ctx context.Context, scheduleID, learnerID, courseID, location string) error
	DeleteByCourseExceptGroup(ctx context.Context, scheduleID, learnerID, courseID string, groupNumber int) error
	DeleteBySchedule(ctx context.Context, scheduleID string) error
	CountDistinctLearners(ctx context.Context, scheduleID, location string, groupNumber int) (int, error)
}

type scheduleStore interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	Catalog(ctx context.Context, schedule *models.Schedule) (models.SessionCatalog, error)
}

type rosterStore interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Learner, error)
	ListByProject(ctx context.Context, projectID string, filter models.RosterFilter) ([]models.Learner, error)
}

type roleMappingStore interface {
	ListByProject(ctx context.Context, projectID string) ([]models.RoleCourseMapping, error)
}

type engineMetrics interface {
	AssignmentCreated(source models.AssignmentSource)
	CapacityRejected()
	AutoAssignFinished(state models.AutoAssignState)
}

type noopMetrics struct{}

func (noopMetrics) AssignmentCreated(models.AssignmentSource) {}
func (noopMetrics) CapacityRejected()                         {}
func (noopMetrics) AutoAssignFinished(models.AutoAssignState) {}

// AssignRequest places one learner onto a resolved target.
type AssignRequest struct {
	LearnerID string `json:"learner_id" validate:"required"`
	TargetRef string `json:"target_ref" validate:"required"`
}

// BulkAssignRequest places several learners onto one resolved target.
type BulkAssignRequest struct {
	LearnerIDs []string `json:"learner_ids" validate:"required,min=1,dive,required"`
	TargetRef  string   `json:"target_ref" validate:"required"`
}

// RemoveGroupRequest removes a learner from one group at a location.
type RemoveGroupRequest struct {
	LearnerID   string `json:"learner_id" validate:"required"`
	Location    string `json:"location" validate:"required"`
	GroupNumber int    `json:"group_number" validate:"required,min=1"`
}

// RemoveCourseRequest removes a learner from one course at a location.
type RemoveCourseRequest struct {
	LearnerID string `json:"learner_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	Location  string `json:"location" validate:"required"`
}

// AssignmentService is the placement allocator. All mutations pass the
// authorizer before writing, enforce the location-consistency invariant, and
// treat a duplicate (learner, session) pair as already satisfied.
type AssignmentService struct {
	repo       assignmentStore
	schedules  scheduleStore
	roster     rosterStore
	mappings   roleMappingStore
	authorizer Authorizer
	metrics    engineMetrics

	defaultCapacity int
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(repo assignmentStore, schedules scheduleStore, roster rosterStore, mappings roleMappingStore, authorizer Authorizer, metrics engineMetrics, defaultCapacity int, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if authorizer == nil {
		authorizer = NewRoleAuthorizer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if defaultCapacity <= 0 {
		defaultCapacity = 25
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:            repo,
		schedules:       schedules,
		roster:          roster,
		mappings:        mappings,
		authorizer:      authorizer,
		metrics:         metrics,
		defaultCapacity: defaultCapacity,
		validator:       validate,
		logger:          logger,
	}
}

// scheduleBatch carries everything one placement batch works against: the
// schedule, its flattened catalog, the current assignment set, and a capacity
// tracker preloaded from that set. Confined to a single goroutine.
type scheduleBatch struct {
	schedule    *models.Schedule
	catalog     []models.CatalogSession
	assignments []models.Assignment
	tracker     *engine.CapacityTracker
}

func (s *AssignmentService) loadBatch(ctx context.Context, scheduleID string) (*scheduleBatch, error) {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	rawCatalog, err := s.schedules.Catalog(ctx, schedule)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load session catalog")
	}
	assignments, err := s.repo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load assignments")
	}

	capacity := schedule.GroupCapacity
	if capacity <= 0 {
		capacity = s.defaultCapacity
	}
	tracker := engine.NewCapacityTracker(scheduleID, capacity, s.repo)
	tracker.Preload(assignments)

	return &scheduleBatch{
		schedule:    schedule,
		catalog:     engine.Flatten(rawCatalog),
		assignments: assignments,
		tracker:     tracker,
	}, nil
}

func (s *AssignmentService) loadProjectData(ctx context.Context, projectID string) ([]models.Learner, []models.RoleCourseMapping, error) {
	roster, err := s.roster.ListByProject(ctx, projectID, models.RosterFilter{})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load roster")
	}
	mappings, err := s.mappings.ListByProject(ctx, projectID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load role mappings")
	}
	return roster, mappings, nil
}

// Sessions returns the flattened, annotated session catalog.
func (s *AssignmentService) Sessions(ctx context.Context, scheduleID string) ([]models.CatalogSession, error) {
	batch, err := s.loadBatch(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return batch.catalog, nil
}

// Categories partitions the roster against the schedule's requirements.
func (s *AssignmentService) Categories(ctx context.Context, scheduleID string) (models.Categories, error) {
	batch, err := s.loadBatch(ctx, scheduleID)
	if err != nil {
		return models.Categories{}, err
	}
	roster, mappings, err := s.loadProjectData(ctx, batch.schedule.ProjectID)
	if err != nil {
		return models.Categories{}, err
	}
	return engine.Categorize(roster, mappings, batch.assignments, batch.schedule.RequiredCourseIDs), nil
}

// Capacity reports distinct-learner occupancy per (location, group) cohort.
func (s *AssignmentService) Capacity(ctx context.Context, scheduleID string) ([]models.CapacitySnapshot, error) {
	batch, err := s.loadBatch(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	occupants := make(map[string]map[int]map[string]struct{})
	for _, a := range batch.assignments {
		groups, ok := occupants[a.TrainingLocation]
		if !ok {
			groups = make(map[int]map[string]struct{})
			occupants[a.TrainingLocation] = groups
		}
		set, ok := groups[a.GroupNumber]
		if !ok {
			set = make(map[string]struct{})
			groups[a.GroupNumber] = set
		}
		set[a.LearnerID] = struct{}{}
	}

	locations := make([]string, 0, len(occupants))
	for loc := range occupants {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	var snapshots []models.CapacitySnapshot
	for _, loc := range locations {
		groups := make([]int, 0, len(occupants[loc]))
		for n := range occupants[loc] {
			groups = append(groups, n)
		}
		sort.Ints(groups)
		for _, n := range groups {
			snapshots = append(snapshots, models.CapacitySnapshot{
				TrainingLocation: loc,
				GroupNumber:      n,
				Occupancy:        len(occupants[loc][n]),
				MaxCapacity:      batch.tracker.Max(),
			})
		}
	}
	return snapshots, nil
}

// List returns assignments with pagination metadata.
func (s *AssignmentService) List(ctx context.Context, scheduleID string, filter models.AssignmentFilter) ([]models.Assignment, models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, scheduleID, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list assignments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return assignments, models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// AssignSingle places one learner onto the resolved target, routed by the
// learner's category: whole-group for needs-all and eligible-unscoped
// learners, single-course for partially-assigned learners (clearing
// same-course rows in every other group) and needs-some learners, a plain
// session-level record otherwise. Course placements prefer the resolved
// target's group, falling back to the lowest group with room.
func (s *AssignmentService) AssignSingle(ctx context.Context, scheduleID string, req AssignRequest) ([]models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment request")
	}
	batch, err := s.loadBatch(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	learner, err := s.roster.FindByID(ctx, req.LearnerID)
	if err != nil {
		return nil, err
	}
	roster, mappings, err := s.loadProjectData(ctx, batch.schedule.ProjectID)
	if err != nil {
		return nil, err
	}

	res, err := engine.ResolveTarget(batch.catalog, req.TargetRef, learner.HomeLocation)
	if err != nil {
		return nil, err
	}
	cats := engine.Categorize(roster, mappings, batch.assignments, batch.schedule.RequiredCourseIDs)
	return s.place(ctx, batch, cats, *learner, res, models.SourceManual)
}

// AssignBulk resolves the target once and places each learner in sequence.
// Per-learner failures are collected, never aborting the remaining batch.
func (s *AssignmentService) AssignBulk(ctx context.Context, scheduleID string, req BulkAssignRequest) (*models.BulkAssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk assignment request")
	}
	batch, err := s.loadBatch(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	roster, mappings, err := s.loadProjectData(ctx, batch.schedule.ProjectID)
	if err != nil {
		return nil, err
	}
	learners, err := s.roster.FindByIDs(ctx, req.LearnerIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load learners")
	}

	res, err := engine.ResolveTarget(batch.catalog, req.TargetRef, "")
	if err != nil {
		return nil, err
	}

	result := &models.BulkAssignmentResult{Successful: []string{}, Failed: []models.AssignmentFailure{}}
	for _, id := range req.LearnerIDs {
		learner, ok := learners[id]
		if !ok {
			result.Failed = append(result.Failed, models.AssignmentFailure{
				LearnerID: id,
				Reason:    "learner not found",
				Code:      appErrors.ErrNotFound.Code,
			})
			continue
		}
		// Categories shift as placements land, so recompute per learner.
		cats := engine.Categorize(roster, mappings, batch.assignments, batch.schedule.RequiredCourseIDs)
		if _, err := s.place(ctx, batch, cats, learner, res, models.SourceManual); err != nil {
			result.Failed = append(result.Failed, failureFor(learner, err))
			continue
		}
		result.Successful = append(result.Successful, id)
	}
	return result, nil
}

// RemoveFromGroup deletes a learner's assignments for one group at a location.
func (s *AssignmentService) RemoveFromGroup(ctx context.Context, scheduleID string, req RemoveGroupRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid removal request")
	}
	learner, err := s.roster.FindByID(ctx, req.LearnerID)
	if err != nil {
		return err
	}
	if err := s.authorizer.CanRemove(ctx, *learner); err != nil {
		return err
	}
	if err := s.repo.DeleteByGroup(ctx, scheduleID, req.LearnerID, req.Location, req.GroupNumber); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete group assignments")
	}
	return nil
}

// RemoveFromCourse deletes a learner's assignments for one course at a
// location, leaving other courses and locations untouched.
func (s *AssignmentService) RemoveFromCourse(ctx context.Context, scheduleID string, req RemoveCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid removal request")
	}
	learner, err := s.roster.FindByID(ctx, req.LearnerID)
	if err != nil {
		return err
	}
	if err := s.authorizer.CanRemove(ctx, *learner); err != nil {
		return err
	}
	if err := s.repo.DeleteByCourse(ctx, scheduleID, req.LearnerID, req.CourseID, req.Location); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete course assignments")
	}
	return nil
}

// RemoveAll deletes every assignment for a schedule.
func (s *AssignmentService) RemoveAll(ctx context.Context, scheduleID string) error {
	if err := s.authorizer.CanRemove(ctx, models.Learner{}); err != nil {
		return err
	}
	if err := s.repo.DeleteBySchedule(ctx, scheduleID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete schedule assignments")
	}
	return nil
}

// place runs the common placement pipeline: location invariant, external
// authorization, then category routing. No state is mutated before the
// authorization check passes.
func (s *AssignmentService) place(ctx context.Context, batch *scheduleBatch, cats models.Categories, learner models.Learner, res *engine.Resolution, source models.AssignmentSource) ([]models.Assignment, error) {
	if learner.HomeLocation != "" && res.Assignment.TrainingLocation != learner.HomeLocation {
		return nil, appErrors.Clone(appErrors.ErrLocationMismatch,
			fmt.Sprintf("session at %q, learner home location %q", res.Assignment.TrainingLocation, learner.HomeLocation))
	}
	if err := s.authorizer.CanAssign(ctx, learner, res.Session); err != nil {
		return nil, err
	}

	location := learner.HomeLocation
	if location == "" {
		location = res.Assignment.TrainingLocation
	}

	switch {
	case containsLearner(cats.NeedsAllCourses, learner.ID) || containsLearner(cats.EligibleUnscoped, learner.ID):
		return s.assignWholeGroup(ctx, batch, learner, location, source)
	case containsLearner(cats.PartiallyAssigned, learner.ID):
		return s.reassignCourse(ctx, batch, learner, res.Assignment.CourseID, location, res.Assignment.GroupNumber, source)
	case learnerNeedsSome(cats, learner.ID):
		return s.assignSingleCourse(ctx, batch, learner, res.Assignment.CourseID, location, res.Assignment.GroupNumber, source)
	default:
		return s.assignSession(ctx, batch, learner, res, source)
	}
}

// reassignCourse moves a partially-assigned learner onto the resolved course
// target. The landing group is chosen before anything is deleted, so the
// same-course/different-group cleanup always matches where the learner
// actually ends up.
func (s *AssignmentService) reassignCourse(ctx context.Context, batch *scheduleBatch, learner models.Learner, courseID, location string, preferredGroup int, source models.AssignmentSource) ([]models.Assignment, error) {
	groupNumber, sessions, err := s.pickCourseGroup(ctx, batch, learner, courseID, location, preferredGroup)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteByCourseExceptGroup(ctx, batch.schedule.ID, learner.ID, courseID, groupNumber); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to clear conflicting assignments")
	}
	return s.insertCourseSessions(ctx, batch, learner, courseID, location, groupNumber, sessions, source)
}

// assignWholeGroup scans every dynamically discovered group number at the
// location, lowest first, for one that offers every course available there
// and still has room, then creates one assignment per course's first session.
func (s *AssignmentService) assignWholeGroup(ctx context.Context, batch *scheduleBatch, learner models.Learner, location string, source models.AssignmentSource) ([]models.Assignment, error) {
	byGroup, courses := sessionsByGroup(batch.catalog, location, "")

	groups := make([]int, 0, len(byGroup))
	for n := range byGroup {
		groups = append(groups, n)
	}
	sort.Ints(groups)

	courseIDs := make([]string, 0, len(courses))
	for id := range courses {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)

	for _, n := range groups {
		complete := true
		for _, courseID := range courseIDs {
			if len(byGroup[n][courseID]) == 0 {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		ok, err := batch.tracker.HasCapacity(ctx, location, n)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		var created []models.Assignment
		for _, courseID := range courseIDs {
			cs := byGroup[n][courseID][0]
			a, err := s.insert(ctx, batch, learner, cs, models.LevelGroup, engine.GroupKey(location, cs.FunctionalArea, n), source)
			if err != nil {
				return created, err
			}
			if a != nil {
				created = append(created, *a)
			}
		}
		batch.tracker.Record(location, n, learner.ID)
		return created, nil
	}

	s.metrics.CapacityRejected()
	return nil, appErrors.Clone(appErrors.ErrNoCapacity,
		fmt.Sprintf("no complete group with remaining capacity at %q", location))
}

// assignSingleCourse places the learner onto the course in the group chosen
// by pickCourseGroup, creating one assignment per session part.
func (s *AssignmentService) assignSingleCourse(ctx context.Context, batch *scheduleBatch, learner models.Learner, courseID, location string, preferredGroup int, source models.AssignmentSource) ([]models.Assignment, error) {
	groupNumber, sessions, err := s.pickCourseGroup(ctx, batch, learner, courseID, location, preferredGroup)
	if err != nil {
		return nil, err
	}
	return s.insertCourseSessions(ctx, batch, learner, courseID, location, groupNumber, sessions, source)
}

// pickCourseGroup chooses the group a course placement lands in: the
// preferred group when it offers the course and can take the learner,
// otherwise the lowest-numbered group that can. A group the learner already
// occupies always has room for them, since re-placing an occupant adds
// nobody.
func (s *AssignmentService) pickCourseGroup(ctx context.Context, batch *scheduleBatch, learner models.Learner, courseID, location string, preferredGroup int) (int, []models.CatalogSession, error) {
	byGroup, _ := sessionsByGroup(batch.catalog, location, courseID)

	groups := make([]int, 0, len(byGroup))
	for n := range byGroup {
		if n != preferredGroup {
			groups = append(groups, n)
		}
	}
	sort.Ints(groups)
	if _, ok := byGroup[preferredGroup]; ok {
		groups = append([]int{preferredGroup}, groups...)
	}

	for _, n := range groups {
		sessions := byGroup[n][courseID]
		if len(sessions) == 0 {
			continue
		}
		if !batch.tracker.Occupies(location, n, learner.ID) {
			ok, err := batch.tracker.HasCapacity(ctx, location, n)
			if err != nil {
				return 0, nil, err
			}
			if !ok {
				continue
			}
		}
		return n, sessions, nil
	}

	s.metrics.CapacityRejected()
	return 0, nil, appErrors.Clone(appErrors.ErrNoCapacity,
		fmt.Sprintf("no group offering %q with remaining capacity at %q", courseID, location))
}

// insertCourseSessions writes the course-level records for one group.
// Multi-part courses get one assignment per part, not one per course.
func (s *AssignmentService) insertCourseSessions(ctx context.Context, batch *scheduleBatch, learner models.Learner, courseID, location string, groupNumber int, sessions []models.CatalogSession, source models.AssignmentSource) ([]models.Assignment, error) {
	var created []models.Assignment
	for _, cs := range sessions {
		a, err := s.insert(ctx, batch, learner, cs, models.LevelCourse, engine.CourseGroupKey(courseID, groupNumber), source)
		if err != nil {
			return created, err
		}
		if a != nil {
			created = append(created, *a)
		}
	}
	batch.tracker.Record(location, groupNumber, learner.ID)
	return created, nil
}

func (s *AssignmentService) assignSession(ctx context.Context, batch *scheduleBatch, learner models.Learner, res *engine.Resolution, source models.AssignmentSource) ([]models.Assignment, error) {
	ok, err := batch.tracker.HasCapacity(ctx, res.Assignment.TrainingLocation, res.Assignment.GroupNumber)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.CapacityRejected()
		return nil, appErrors.Clone(appErrors.ErrNoCapacity,
			fmt.Sprintf("group %d at %q is full", res.Assignment.GroupNumber, res.Assignment.TrainingLocation))
	}
	a, err := s.insert(ctx, batch, learner, res.Session, models.LevelSession, res.Assignment.GroupKey, source)
	if err != nil {
		return nil, err
	}
	if a == nil {
		// Already satisfied; idempotent no-op.
		return []models.Assignment{}, nil
	}
	batch.tracker.Record(res.Assignment.TrainingLocation, res.Assignment.GroupNumber, learner.ID)
	return []models.Assignment{*a}, nil
}

// insert persists one assignment record. A duplicate (learner, session) pair
// returns (nil, nil): already satisfied, never double-counted.
func (s *AssignmentService) insert(ctx context.Context, batch *scheduleBatch, learner models.Learner, cs models.CatalogSession, level models.AssignmentLevel, groupKey string, source models.AssignmentSource) (*models.Assignment, error) {
	assignment := models.Assignment{
		ScheduleID:       batch.schedule.ID,
		LearnerID:        learner.ID,
		CourseID:         cs.Session.CourseID,
		SessionKey:       cs.Key,
		GroupKey:         groupKey,
		GroupNumber:      cs.GroupNumber,
		TrainingLocation: cs.TrainingLocation,
		FunctionalArea:   cs.FunctionalArea,
		Level:            level,
		Source:           source,
		Status:           models.StatusEnrolled,
	}
	inserted, err := s.repo.Insert(ctx, &assignment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to insert assignment")
	}
	if !inserted {
		return nil, nil
	}
	batch.assignments = append(batch.assignments, assignment)
	s.metrics.AssignmentCreated(source)
	return &assignment, nil
}

// sessionsByGroup indexes the location's sessions by group then course.
// courseID narrows the index to one course; empty collects every course
// offered at the location.
func sessionsByGroup(catalog []models.CatalogSession, location, courseID string) (map[int]map[string][]models.CatalogSession, map[string]struct{}) {
	byGroup := make(map[int]map[string][]models.CatalogSession)
	courses := make(map[string]struct{})
	for _, cs := range catalog {
		if cs.TrainingLocation != location {
			continue
		}
		if courseID != "" && cs.Session.CourseID != courseID {
			continue
		}
		courses[cs.Session.CourseID] = struct{}{}
		group, ok := byGroup[cs.GroupNumber]
		if !ok {
			group = make(map[string][]models.CatalogSession)
			byGroup[cs.GroupNumber] = group
		}
		group[cs.Session.CourseID] = append(group[cs.Session.CourseID], cs)
	}
	return byGroup, courses
}

func containsLearner(learners []models.Learner, id string) bool {
	for _, l := range learners {
		if l.ID == id {
			return true
		}
	}
	return false
}

func learnerNeedsSome(cats models.Categories, id string) bool {
	for _, learners := range cats.NeedsSomeCourses {
		if containsLearner(learners, id) {
			return true
		}
	}
	return false
}

func failureFor(learner models.Learner, err error) models.AssignmentFailure {
	e := appErrors.FromError(err)
	return models.AssignmentFailure{
		LearnerID:   learner.ID,
		LearnerName: learner.FullName,
		Reason:      e.Message,
		Code:        e.Code,
	}
}
