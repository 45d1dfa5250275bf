package engine

import (
	"context"

	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

// GroupOccupancyQuerier answers individual occupancy queries when no
// preload is available. Implemented by the assignment repository.
type GroupOccupancyQuerier interface {
	CountDistinctLearners(ctx context.Context, scheduleID, location string, groupNumber int) (int, error)
}

// CapacityTracker answers capacity questions for one batch operation and is
// discarded afterwards. In preload mode a single bulk assignment query
// seeds an in-memory map, and every successful placement updates the map in
// place, so a batch never re-queries storage between placements.
//
// Not safe for concurrent use: batches run sequentially by design, so that
// each capacity decrement is visible to the next learner's check.
type CapacityTracker struct {
	scheduleID string
	max        int
	querier    GroupOccupancyQuerier

	primed    bool
	occupants map[string]map[int]map[string]struct{}
}

// NewCapacityTracker builds a tracker for one schedule. max falls back to
// the default group capacity when non-positive.
func NewCapacityTracker(scheduleID string, max int, querier GroupOccupancyQuerier) *CapacityTracker {
	if max <= 0 {
		max = 25
	}
	return &CapacityTracker{
		scheduleID: scheduleID,
		max:        max,
		querier:    querier,
		occupants:  make(map[string]map[int]map[string]struct{}),
	}
}

// Max returns the per-group capacity limit.
func (t *CapacityTracker) Max() int {
	return t.max
}

// Preload seeds the tracker from the schedule's full assignment set.
func (t *CapacityTracker) Preload(assignments []models.Assignment) {
	for _, a := range assignments {
		t.add(a.TrainingLocation, a.GroupNumber, a.LearnerID)
	}
	t.primed = true
}

// Record registers a successful placement so subsequent checks within the
// batch see the new occupant without re-querying storage.
func (t *CapacityTracker) Record(location string, groupNumber int, learnerID string) {
	t.add(location, groupNumber, learnerID)
}

// Occupancy counts distinct learners assigned to a (location, group)
// cohort. Preloaded batches consult the in-memory map; otherwise the
// per-group querier answers, and failing both, the locally recorded
// placements stand in.
func (t *CapacityTracker) Occupancy(ctx context.Context, location string, groupNumber int) (int, error) {
	if t.primed || t.querier == nil {
		return len(t.occupants[NormalizeToken(location)][groupNumber]), nil
	}
	n, err := t.querier.CountDistinctLearners(ctx, t.scheduleID, location, groupNumber)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to count group occupancy")
	}
	return n, nil
}

// Occupies reports whether the learner is already a recorded occupant of
// the cohort. Only preloaded and locally recorded placements are consulted.
func (t *CapacityTracker) Occupies(location string, groupNumber int, learnerID string) bool {
	_, ok := t.occupants[NormalizeToken(location)][groupNumber][learnerID]
	return ok
}

// HasCapacity reports whether the cohort can take one more learner.
func (t *CapacityTracker) HasCapacity(ctx context.Context, location string, groupNumber int) (bool, error) {
	n, err := t.Occupancy(ctx, location, groupNumber)
	if err != nil {
		return false, err
	}
	return n < t.max, nil
}

func (t *CapacityTracker) add(location string, groupNumber int, learnerID string) {
	loc := NormalizeToken(location)
	groups, ok := t.occupants[loc]
	if !ok {
		groups = make(map[int]map[string]struct{})
		t.occupants[loc] = groups
	}
	set, ok := groups[groupNumber]
	if !ok {
		set = make(map[string]struct{})
		groups[groupNumber] = set
	}
	set[learnerID] = struct{}{}
}
