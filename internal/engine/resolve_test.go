package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

func twoLocationCatalog() []models.CatalogSession {
	return Flatten(models.SessionCatalog{Flat: []models.Session{
		{CourseID: "course-a", CourseName: "Course A", Sequence: 1, Location: "North Training Centre", FunctionalArea: "Safety", Title: "Course A - Group 1"},
		{CourseID: "course-a", CourseName: "Course A", Sequence: 1, Location: "South Training Centre", FunctionalArea: "Safety", Title: "Course A - Group 1"},
	}})
}

func TestResolveTargetByStableKey(t *testing.T) {
	catalog := twoLocationCatalog()

	res, err := ResolveTarget(catalog, "course-a-1-south-training-centre-safety", "")
	require.NoError(t, err)
	assert.Equal(t, "South Training Centre", res.Assignment.TrainingLocation)
	assert.Equal(t, "course-a", res.Assignment.CourseID)
	assert.Equal(t, "Course A", res.Assignment.CourseName)
	assert.Equal(t, 1, res.Assignment.GroupNumber)
	assert.Equal(t, "South Training Centre-Safety-Group1", res.Assignment.GroupKey)
}

func TestResolveTargetLocationSuffixWins(t *testing.T) {
	catalog := twoLocationCatalog()

	// Auto-assign references append a collapsed location segment to the
	// legacy key, which matches sessions in both locations.
	res, err := ResolveTarget(catalog, "course-a-1-NorthTrainingCentre", "South Training Centre")
	require.NoError(t, err)
	assert.Equal(t, "North Training Centre", res.Assignment.TrainingLocation)
}

func TestResolveTargetHomeLocationTieBreak(t *testing.T) {
	catalog := twoLocationCatalog()

	res, err := ResolveTarget(catalog, "course-a-1", "South Training Centre")
	require.NoError(t, err)
	assert.Equal(t, "South Training Centre", res.Assignment.TrainingLocation)
}

func TestResolveTargetFirstMatchFallback(t *testing.T) {
	catalog := twoLocationCatalog()

	res, err := ResolveTarget(catalog, "course-a-1", "")
	require.NoError(t, err)
	assert.Equal(t, "North Training Centre", res.Assignment.TrainingLocation)
}

func TestResolveTargetNotFound(t *testing.T) {
	catalog := twoLocationCatalog()

	res, err := ResolveTarget(catalog, "course-z-9", "")
	require.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTargetNotFound))
	assert.Contains(t, err.Error(), "course-z-9")
	assert.Contains(t, err.Error(), "course-a-1-north-training-centre-safety")
}

func TestResolveTargetDefaultsForBareSession(t *testing.T) {
	catalog := Flatten(models.SessionCatalog{Flat: []models.Session{
		{CourseID: "course-a", Sequence: 1, Title: "Course A"},
	}})

	res, err := ResolveTarget(catalog, "course-a-1", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLocation, res.Assignment.TrainingLocation)
	assert.Equal(t, DefaultFunctionalArea, res.Assignment.FunctionalArea)
}
