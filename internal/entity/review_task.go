package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/study-notebook/constants"
)

// ReviewTask represents a row of the tasks table for data transfer between layers.
type ReviewTask struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DueDate      time.Time `json:"due_date"`
	IsReviewTask bool      `json:"is_review_task"`
	ArchiveName  string    `json:"archive_name"`
	IsCompleted  bool      `json:"is_completed"`
	CreatedAt    time.Time `json:"created_at"`
}

// Status reports the task's completion state as a label.
func (t ReviewTask) Status() constants.TaskStatus {
	return constants.StatusOf(t.IsCompleted)
}
