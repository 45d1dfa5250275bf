package engine

import (
	"github.com/trainhub/assignment-api/internal/models"
)

// Categorize partitions a roster relative to the schedule's required
// courses. Pure function of its inputs: re-running with the same roster,
// mappings and assignments yields the same partition. It is cheap enough to
// recompute after every assignment change.
//
// Per learner: required = courses mapped to the learner's role intersected
// with the schedule's required course set. No requirements at all excludes
// the learner; requirements that fall entirely outside the schedule place
// them in the eligible-unscoped bucket. Fully met requirements exclude the
// learner as not actionable. Otherwise the learner lands in needs-all,
// partially-assigned, or the per-course needs-some buckets, with partially
// assigned learners indexed under every course they still miss so they stay
// reachable for per-course reassignment.
func Categorize(roster []models.Learner, mappings []models.RoleCourseMapping, assignments []models.Assignment, requiredCourseIDs []string) models.Categories {
	courseSet := make(map[string]struct{}, len(requiredCourseIDs))
	for _, id := range requiredCourseIDs {
		courseSet[id] = struct{}{}
	}

	roleCourses := make(map[string][]string)
	for _, m := range mappings {
		roleCourses[m.Role] = append(roleCourses[m.Role], m.CourseID)
	}

	assignedCourses := make(map[string]map[string]struct{})
	for _, a := range assignments {
		set, ok := assignedCourses[a.LearnerID]
		if !ok {
			set = make(map[string]struct{})
			assignedCourses[a.LearnerID] = set
		}
		set[a.CourseID] = struct{}{}
	}

	cats := models.Categories{NeedsSomeCourses: make(map[string][]models.Learner)}

	for _, learner := range roster {
		mapped := roleCourses[learner.Role]
		if len(mapped) == 0 {
			cats.Excluded = append(cats.Excluded, learner.ID)
			continue
		}

		required := make(map[string]struct{})
		for _, courseID := range mapped {
			if _, ok := courseSet[courseID]; ok {
				required[courseID] = struct{}{}
			}
		}
		if len(required) == 0 {
			// The role is mapped on the project, just not to any course in
			// this schedule. The orchestrator treats these like needs-all.
			cats.EligibleUnscoped = append(cats.EligibleUnscoped, learner)
			continue
		}

		assigned := assignedCourses[learner.ID]
		var missing []string
		met := 0
		for _, courseID := range requiredCourseIDs {
			if _, need := required[courseID]; !need {
				continue
			}
			if _, ok := assigned[courseID]; ok {
				met++
			} else {
				missing = append(missing, courseID)
			}
		}

		if len(missing) == 0 {
			// Fully assigned, not actionable.
			cats.Excluded = append(cats.Excluded, learner.ID)
			continue
		}

		coversWholeSchedule := len(required) == len(courseSet)

		switch {
		case met == 0 && coversWholeSchedule:
			cats.NeedsAllCourses = append(cats.NeedsAllCourses, learner)
		case met > 0:
			cats.PartiallyAssigned = append(cats.PartiallyAssigned, learner)
			for _, courseID := range missing {
				cats.NeedsSomeCourses[courseID] = append(cats.NeedsSomeCourses[courseID], learner)
			}
		default:
			for _, courseID := range missing {
				cats.NeedsSomeCourses[courseID] = append(cats.NeedsSomeCourses[courseID], learner)
			}
		}
	}

	return cats
}
