package models

import "time"

// AutoAssignState is the lifecycle of an auto-assign run.
type AutoAssignState string

const (
	RunIdle      AutoAssignState = "IDLE"
	RunRunning   AutoAssignState = "RUNNING"
	RunCompleted AutoAssignState = "COMPLETED"
	RunCancelled AutoAssignState = "CANCELLED"
	RunFailed    AutoAssignState = "FAILED"
)

// AutoAssignProgress is the incremental snapshot published while a run is
// processing learners. The final snapshot embeds the result.
type AutoAssignProgress struct {
	RunID          string            `json:"run_id"`
	ScheduleID     string            `json:"schedule_id"`
	State          AutoAssignState   `json:"state"`
	CurrentLearner string            `json:"current_learner,omitempty"`
	Processed      int               `json:"processed"`
	Total          int               `json:"total"`
	Succeeded      int               `json:"succeeded"`
	Failed         int               `json:"failed"`
	Result         *AutoAssignResult `json:"result,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// AutoAssignCounts summarises how learners entered the run.
type AutoAssignCounts struct {
	AllCoursesCount  int `json:"all_courses_count"`
	SomeCoursesCount int `json:"some_courses_count"`
	TotalProcessed   int `json:"total_processed"`
}

// AutoAssignResult is the end-of-run report. Already-placed assignments are
// kept on cancellation; there is no rollback.
type AutoAssignResult struct {
	Successful []string            `json:"successful"`
	Failed     []AssignmentFailure `json:"failed"`
	Summary    AutoAssignCounts    `json:"summary"`
}
