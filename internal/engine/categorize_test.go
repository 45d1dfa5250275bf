package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/assignment-api/internal/models"
)

var categorizerMappings = []models.RoleCourseMapping{
	{Role: "operator", CourseID: "course-a"},
	{Role: "operator", CourseID: "course-b"},
	{Role: "inspector", CourseID: "course-a"},
	{Role: "driver", CourseID: "course-x"},
}

var scheduleCourses = []string{"course-a", "course-b"}

func TestCategorizeNeedsAll(t *testing.T) {
	roster := []models.Learner{{ID: "l1", Role: "operator"}}

	cats := Categorize(roster, categorizerMappings, nil, scheduleCourses)
	require.Len(t, cats.NeedsAllCourses, 1)
	assert.Equal(t, "l1", cats.NeedsAllCourses[0].ID)
	assert.Empty(t, cats.PartiallyAssigned)
	assert.Empty(t, cats.NeedsSomeCourses)
}

func TestCategorizePartiallyAssigned(t *testing.T) {
	roster := []models.Learner{{ID: "l1", Role: "operator"}}
	assignments := []models.Assignment{{LearnerID: "l1", CourseID: "course-a"}}

	cats := Categorize(roster, categorizerMappings, assignments, scheduleCourses)
	require.Len(t, cats.PartiallyAssigned, 1)
	require.Len(t, cats.NeedsSomeCourses["course-b"], 1)
	assert.Equal(t, "l1", cats.NeedsSomeCourses["course-b"][0].ID)
	assert.Empty(t, cats.NeedsAllCourses)
	assert.Equal(t, []string{"course-b"}, cats.MissingCourses("l1"))
}

func TestCategorizeStrictSubsetUnmet(t *testing.T) {
	roster := []models.Learner{{ID: "l2", Role: "inspector"}}

	cats := Categorize(roster, categorizerMappings, nil, scheduleCourses)
	assert.Empty(t, cats.NeedsAllCourses)
	assert.Empty(t, cats.PartiallyAssigned)
	require.Len(t, cats.NeedsSomeCourses["course-a"], 1)
	assert.Equal(t, "l2", cats.NeedsSomeCourses["course-a"][0].ID)
}

func TestCategorizeFullyAssignedExcluded(t *testing.T) {
	roster := []models.Learner{{ID: "l1", Role: "operator"}}
	assignments := []models.Assignment{
		{LearnerID: "l1", CourseID: "course-a"},
		{LearnerID: "l1", CourseID: "course-b"},
	}

	cats := Categorize(roster, categorizerMappings, assignments, scheduleCourses)
	assert.Empty(t, cats.NeedsAllCourses)
	assert.Empty(t, cats.PartiallyAssigned)
	assert.Empty(t, cats.NeedsSomeCourses)
	assert.Equal(t, []string{"l1"}, cats.Excluded)
}

func TestCategorizeUnmappedExcluded(t *testing.T) {
	roster := []models.Learner{{ID: "l3", Role: "visitor"}}

	cats := Categorize(roster, categorizerMappings, nil, scheduleCourses)
	assert.Equal(t, []string{"l3"}, cats.Excluded)
	assert.Empty(t, cats.EligibleUnscoped)
}

func TestCategorizeEligibleUnscoped(t *testing.T) {
	// Mapped on the project, but to no course in this schedule.
	roster := []models.Learner{{ID: "l4", Role: "driver"}}

	cats := Categorize(roster, categorizerMappings, nil, scheduleCourses)
	require.Len(t, cats.EligibleUnscoped, 1)
	assert.Equal(t, "l4", cats.EligibleUnscoped[0].ID)
	assert.Empty(t, cats.Excluded)
}

func TestCategorizeTotality(t *testing.T) {
	roster := []models.Learner{
		{ID: "all", Role: "operator"},
		{ID: "partial", Role: "operator"},
		{ID: "subset", Role: "inspector"},
		{ID: "done", Role: "operator"},
		{ID: "unmapped", Role: "visitor"},
		{ID: "unscoped", Role: "driver"},
	}
	assignments := []models.Assignment{
		{LearnerID: "partial", CourseID: "course-a"},
		{LearnerID: "done", CourseID: "course-a"},
		{LearnerID: "done", CourseID: "course-b"},
	}

	cats := Categorize(roster, categorizerMappings, assignments, scheduleCourses)

	primary := make(map[string]int)
	for _, l := range cats.NeedsAllCourses {
		primary[l.ID]++
	}
	for _, l := range cats.PartiallyAssigned {
		primary[l.ID]++
	}
	for _, l := range cats.EligibleUnscoped {
		primary[l.ID]++
	}
	for _, id := range cats.Excluded {
		primary[id]++
	}
	needsSomeOnly := map[string]bool{"subset": true}
	for _, learners := range cats.NeedsSomeCourses {
		for _, l := range learners {
			if needsSomeOnly[l.ID] {
				primary[l.ID]++
				needsSomeOnly[l.ID] = false
			}
		}
	}

	// Every learner lands in exactly one primary bucket; nobody is dropped.
	require.Len(t, primary, len(roster))
	for id, count := range primary {
		assert.Equal(t, 1, count, "learner %s", id)
	}

	// Re-running with identical inputs yields the identical partition.
	again := Categorize(roster, categorizerMappings, assignments, scheduleCourses)
	assert.Equal(t, cats, again)
}
