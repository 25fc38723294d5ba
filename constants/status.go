package constants

import "time"

// TaskStatus is the observable state of a review task. It is derived from the
// is_completed column; both transitions are allowed.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// StatusOf maps the completion flag to its status label.
func StatusOf(isCompleted bool) TaskStatus {
	if isCompleted {
		return TaskStatusCompleted
	}
	return TaskStatusPending
}

// TasksTable is the record store table shared by user and review tasks.
const TasksTable = "tasks"

// Review task defaults.
const (
	ReviewTitleSuffix  = "_Review"
	DefaultReviewDelay = 24 * time.Hour
)

// OCR defaults. Languages use tesseract traineddata names joined with '+'.
const (
	DefaultOCRLanguage = "kor+eng"
	DefaultPageSegMode = 3 // fully automatic page segmentation, no OSD
)
