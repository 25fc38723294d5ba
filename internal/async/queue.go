package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/study-notebook/internal/ocr"
)

// Job is one page to extract. ID is caller-chosen and echoed in the outcome.
type Job struct {
	ID          string
	Source      ocr.Source
	SubmittedAt time.Time
	TraceID     string
}

// Outcome is delivered to the sink once per accepted job.
type Outcome struct {
	Job      Job
	Result   ocr.Result
	Err      error
	Duration time.Duration
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
