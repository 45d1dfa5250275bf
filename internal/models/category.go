package models

// Categories partitions a roster relative to a schedule's course
// requirements. Recomputed after every assignment change; never persisted.
//
// NeedsAllCourses, PartiallyAssigned, EligibleUnscoped and Excluded are
// disjoint. NeedsSomeCourses is a per-course index: it holds learners whose
// requirements are a strict subset of the schedule as well as partially
// assigned learners, keyed by each course they are still missing, so they
// stay reachable for per-course reassignment.
type Categories struct {
	NeedsAllCourses   []Learner            `json:"needs_all_courses"`
	NeedsSomeCourses  map[string][]Learner `json:"needs_some_courses"`
	PartiallyAssigned []Learner            `json:"partially_assigned"`
	EligibleUnscoped  []Learner            `json:"eligible_unscoped"`
	Excluded          []string             `json:"excluded"`
}

// MissingCourses returns the course buckets a learner appears in, i.e. the
// courses they still need.
func (c Categories) MissingCourses(learnerID string) []string {
	var out []string
	for courseID, learners := range c.NeedsSomeCourses {
		for _, l := range learners {
			if l.ID == learnerID {
				out = append(out, courseID)
				break
			}
		}
	}
	return out
}
