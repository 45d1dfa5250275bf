package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Schedule is a named collection of training sessions spanning locations
// and functional areas. GroupCapacity comes from schedule criteria and
// defaults to 25 when unset.
type Schedule struct {
	ID                string         `db:"id" json:"id"`
	ProjectID         string         `db:"project_id" json:"project_id"`
	Name              string         `db:"name" json:"name"`
	GroupCapacity     int            `db:"group_capacity" json:"group_capacity"`
	RequiredCourseIDs pq.StringArray `db:"required_course_ids" json:"required_course_ids"`
	NestedCatalog     types.JSONText `db:"nested_catalog" json:"-"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// CapacitySnapshot reports occupancy for one (location, group) cohort.
type CapacitySnapshot struct {
	TrainingLocation string `json:"training_location"`
	GroupNumber      int    `json:"group_number"`
	Occupancy        int    `json:"occupancy"`
	MaxCapacity      int    `json:"max_capacity"`
}
