package engine

import (
	"fmt"
	"strings"

	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

// AssignmentData is the placement metadata derived from a resolved target.
type AssignmentData struct {
	CourseID         string `json:"course_id"`
	CourseName       string `json:"course_name"`
	GroupNumber      int    `json:"group_number"`
	GroupKey         string `json:"group_key"`
	SessionKey       string `json:"session_key"`
	TrainingLocation string `json:"training_location"`
	FunctionalArea   string `json:"functional_area"`
}

// Resolution pairs the derived assignment data with the concrete session a
// target reference resolved to.
type Resolution struct {
	Assignment AssignmentData        `json:"assignment_data"`
	Session    models.CatalogSession `json:"session_data"`
}

// ResolveTarget maps an opaque target reference back to a catalog session.
//
// References emitted by the auto-assign path carry a trailing location
// segment (e.g. "...-NorthTrainingCentre"); when present it is stripped and
// used as the authoritative location match. When the base reference matches
// several sessions, the same course and title repeating across locations,
// the extracted location wins, then the learner's home location, then the
// first match in catalog order. Legacy references without location context
// match via each session's legacy key.
func ResolveTarget(catalog []models.CatalogSession, ref, homeLocation string) (*Resolution, error) {
	base, authoritative := stripLocationSuffix(catalog, ref)

	matches := matchSessions(catalog, base)
	if len(matches) == 0 && base != ref {
		// The trailing segment looked like a location but belongs to the
		// key itself. Retry unstripped.
		base, authoritative = ref, ""
		matches = matchSessions(catalog, base)
	}

	if len(matches) == 0 {
		known := make([]string, 0, len(catalog))
		for _, cs := range catalog {
			known = append(known, cs.Key)
		}
		return nil, appErrors.Wrap(
			fmt.Errorf("attempted %q, known keys: [%s]", ref, strings.Join(known, " ")),
			appErrors.ErrTargetNotFound.Code,
			appErrors.ErrTargetNotFound.Status,
			fmt.Sprintf("no session matches target %q", ref),
		)
	}

	selected := matches[0]
	if authoritative != "" {
		for _, m := range matches {
			if collapseToken(m.TrainingLocation) == collapseToken(authoritative) {
				selected = m
				break
			}
		}
	} else if homeLocation != "" {
		for _, m := range matches {
			if m.TrainingLocation == homeLocation {
				selected = m
				break
			}
		}
	}

	return &Resolution{
		Assignment: AssignmentData{
			CourseID:         selected.Session.CourseID,
			CourseName:       selected.Session.CourseName,
			GroupNumber:      selected.GroupNumber,
			GroupKey:         GroupKey(selected.TrainingLocation, selected.FunctionalArea, selected.GroupNumber),
			SessionKey:       selected.Key,
			TrainingLocation: selected.TrainingLocation,
			FunctionalArea:   selected.FunctionalArea,
		},
		Session: selected,
	}, nil
}

func matchSessions(catalog []models.CatalogSession, base string) []models.CatalogSession {
	var matches []models.CatalogSession
	for _, cs := range catalog {
		if cs.Key == base || cs.LegacyKey == base {
			matches = append(matches, cs)
		}
	}
	return matches
}

// stripLocationSuffix removes a trailing location segment from a reference
// when the segment matches a catalog location by collapsed comparison.
// Returns the base reference and the extracted location name, if any.
func stripLocationSuffix(catalog []models.CatalogSession, ref string) (string, string) {
	idx := strings.LastIndex(ref, "-")
	if idx <= 0 || idx == len(ref)-1 {
		return ref, ""
	}
	tail := collapseToken(ref[idx+1:])
	if tail == "" {
		return ref, ""
	}
	for _, cs := range catalog {
		if collapseToken(cs.TrainingLocation) == tail {
			return ref[:idx], cs.TrainingLocation
		}
	}
	return ref, ""
}
