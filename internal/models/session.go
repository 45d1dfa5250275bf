package models

import "time"

// Session is one scheduled occurrence of a course segment. Sessions are
// read-only inputs to the engine; only assignments are ever written.
type Session struct {
	CourseID        string    `db:"course_id" json:"course_id"`
	CourseName      string    `db:"course_name" json:"course_name"`
	Sequence        int       `db:"sequence" json:"sequence"`
	FunctionalArea  string    `db:"functional_area" json:"functional_area,omitempty"`
	Location        string    `db:"location" json:"location,omitempty"`
	Classroom       string    `db:"classroom" json:"classroom,omitempty"`
	LocationKey     string    `db:"location_key" json:"location_key,omitempty"`
	Title           string    `db:"title" json:"title"`
	StartsAt        time.Time `db:"starts_at" json:"starts_at"`
	EndsAt          time.Time `db:"ends_at" json:"ends_at"`
	MaxParticipants int       `db:"max_participants" json:"max_participants"`
}

// SessionCatalog holds a schedule's sessions in whichever shape the source
// system delivered them: a flat list, or nested by functional area, then
// training location, then classroom.
type SessionCatalog struct {
	Flat   []Session                                  `json:"flat,omitempty"`
	Nested map[string]map[string]map[string][]Session `json:"nested,omitempty"`
}

// CatalogSession is a flattened session with its nesting context attached
// and the group/part numbers parsed out of the title exactly once.
// Downstream code never re-parses title text.
type CatalogSession struct {
	Session          Session `json:"session"`
	TrainingLocation string  `json:"training_location"`
	FunctionalArea   string  `json:"functional_area"`
	Classroom        string  `json:"classroom,omitempty"`
	GroupNumber      int     `json:"group_number"`
	PartNumber       int     `json:"part_number,omitempty"`
	Key              string  `json:"key"`
	LegacyKey        string  `json:"legacy_key"`
}
