package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/assignment-api/internal/models"
)

type stubOccupancyQuerier struct {
	counts  map[string]int
	queries int
}

func (q *stubOccupancyQuerier) CountDistinctLearners(ctx context.Context, scheduleID, location string, groupNumber int) (int, error) {
	q.queries++
	return q.counts[location], nil
}

func TestCapacityMonotonicity(t *testing.T) {
	tracker := NewCapacityTracker("sched-1", 3, nil)

	for i, learner := range []string{"l1", "l2", "l3"} {
		ok, err := tracker.HasCapacity(context.Background(), "North", 1)
		require.NoError(t, err)
		require.True(t, ok, "placement %d", i+1)
		tracker.Record("North", 1, learner)

		n, err := tracker.Occupancy(context.Background(), "North", 1)
		require.NoError(t, err)
		assert.Equal(t, i+1, n)
	}

	ok, err := tracker.HasCapacity(context.Background(), "North", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCapacityCountsDistinctLearners(t *testing.T) {
	tracker := NewCapacityTracker("sched-1", 25, nil)
	tracker.Preload([]models.Assignment{
		{LearnerID: "l1", TrainingLocation: "North", GroupNumber: 1},
		{LearnerID: "l1", TrainingLocation: "North", GroupNumber: 1},
		{LearnerID: "l2", TrainingLocation: "North", GroupNumber: 1},
		{LearnerID: "l3", TrainingLocation: "North", GroupNumber: 2},
	})

	n, err := tracker.Occupancy(context.Background(), "North", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = tracker.Occupancy(context.Background(), "North", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCapacityPreloadSkipsQuerier(t *testing.T) {
	querier := &stubOccupancyQuerier{counts: map[string]int{"North": 10}}
	tracker := NewCapacityTracker("sched-1", 25, querier)
	tracker.Preload(nil)

	n, err := tracker.Occupancy(context.Background(), "North", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Zero(t, querier.queries)
}

func TestCapacityFallsBackToQuerier(t *testing.T) {
	querier := &stubOccupancyQuerier{counts: map[string]int{"North": 24}}
	tracker := NewCapacityTracker("sched-1", 25, querier)

	ok, err := tracker.HasCapacity(context.Background(), "North", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	querier.counts["North"] = 25
	ok, err = tracker.HasCapacity(context.Background(), "North", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, querier.queries)
}

func TestCapacityLocationNormalized(t *testing.T) {
	tracker := NewCapacityTracker("sched-1", 25, nil)
	tracker.Record("North Training Centre", 1, "l1")

	n, err := tracker.Occupancy(context.Background(), "north  training centre", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 25, tracker.Max())
}

func TestCapacityDefaultMax(t *testing.T) {
	tracker := NewCapacityTracker("sched-1", 0, nil)
	assert.Equal(t, 25, tracker.Max())
}
