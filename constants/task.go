package constants

// Columns of the tasks table. User-created and scheduler-created tasks share
// the table and are told apart by is_review_task.
const (
	ColID           = "id"
	ColOwnerID      = "owner_id"
	ColTitle        = "title"
	ColDescription  = "description"
	ColDueDate      = "due_date"
	ColIsReviewTask = "is_review_task"
	ColArchiveName  = "archive_name"
	ColIsCompleted  = "is_completed"
	ColCreatedAt    = "created_at"
)
