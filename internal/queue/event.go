// Package queue defines message payloads exchanged over the message broker.
package queue

// AllocationSavedEvent is published when a seating plan is persisted for
// an exam session. It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type AllocationSavedEvent struct {
	AllocationID  uint64 `json:"allocation_id"`
	SessionID     uint64 `json:"session_id"`
	SavedBy       uint64 `json:"saved_by"`
	ClassroomID   uint64 `json:"classroom_id"`
	ClassroomName string `json:"classroom_name"`
	SessionTitle  string `json:"session_title"`
	ExamDate      string `json:"exam_date"`
	NumBatches    int    `json:"num_batches"`
	TotalStudents int    `json:"total_students"`
	BrokenSeats   int    `json:"broken_seats"`
	IsValid       bool   `json:"is_valid"`
	SavedAt       string `json:"saved_at"`
}
