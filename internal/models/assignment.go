package models

import "time"

// AssignmentLevel is the granularity at which a learner is bound to training.
type AssignmentLevel string

// Supported assignment levels.
const (
	LevelTrainingLocation AssignmentLevel = "training_location"
	LevelCourse           AssignmentLevel = "course"
	LevelGroup            AssignmentLevel = "group"
	LevelSession          AssignmentLevel = "session"
)

// AssignmentSource records how an assignment was created.
type AssignmentSource string

const (
	SourceManual    AssignmentSource = "manual"
	SourceAutomatic AssignmentSource = "automatic"
)

// AssignmentStatus is the enrollment status of an assignment.
type AssignmentStatus string

const (
	StatusEnrolled AssignmentStatus = "enrolled"
	StatusPending  AssignmentStatus = "pending"
)

// Assignment binds a learner to a session within a schedule. At most one
// row may exist per (schedule, learner, session key) pair; a duplicate
// insert is treated as already satisfied, never double-counted.
type Assignment struct {
	ID               string           `db:"id" json:"id"`
	ScheduleID       string           `db:"schedule_id" json:"schedule_id"`
	LearnerID        string           `db:"learner_id" json:"learner_id"`
	CourseID         string           `db:"course_id" json:"course_id"`
	SessionKey       string           `db:"session_key" json:"session_key"`
	GroupKey         string           `db:"group_key" json:"group_key"`
	GroupNumber      int              `db:"group_number" json:"group_number"`
	TrainingLocation string           `db:"training_location" json:"training_location"`
	FunctionalArea   string           `db:"functional_area" json:"functional_area"`
	Level            AssignmentLevel  `db:"level" json:"level"`
	Source           AssignmentSource `db:"source" json:"source"`
	Status           AssignmentStatus `db:"status" json:"status"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// AssignmentFilter captures filtering criteria for listing assignments.
type AssignmentFilter struct {
	LearnerID   string
	CourseID    string
	Location    string
	GroupNumber int
	Source      AssignmentSource
	Page        int
	PageSize    int
}

// AssignmentFailure reports a per-learner placement failure in bulk results.
type AssignmentFailure struct {
	LearnerID   string `json:"learner_id"`
	LearnerName string `json:"learner_name,omitempty"`
	Reason      string `json:"reason"`
	Code        string `json:"code,omitempty"`
}

// BulkAssignmentResult isolates per-learner outcomes of a bulk placement.
// Partial failure is expected; failures never abort the remaining batch.
type BulkAssignmentResult struct {
	Successful []string            `json:"successful"`
	Failed     []AssignmentFailure `json:"failed"`
}
