package models

import "time"

// Learner is an end user eligible for training assignment. Sourced from the
// roster store; the engine only reads.
type Learner struct {
	ID           string    `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"project_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         string    `db:"role" json:"role"`
	HomeLocation string    `db:"home_location" json:"home_location"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RoleCourseMapping pairs a role name with a required course.
type RoleCourseMapping struct {
	ID        string `db:"id" json:"id"`
	ProjectID string `db:"project_id" json:"project_id"`
	Role      string `db:"role" json:"role"`
	CourseID  string `db:"course_id" json:"course_id"`
}

// RosterFilter captures filtering criteria for listing learners.
type RosterFilter struct {
	Role     string
	Location string
	Search   string
	Page     int
	PageSize int
}
