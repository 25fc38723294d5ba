package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/study-notebook/constants"
	"github.com/joseph-ayodele/study-notebook/internal/entity"
)

func TestToReviewTaskCoercesDriverValues(t *testing.T) {
	id := uuid.New()
	rec := entity.Record{
		constants.ColID:           []byte(id.String()),
		constants.ColOwnerID:      "owner",
		constants.ColTitle:        []byte("Ch2_Review"),
		constants.ColDueDate:      "2026-05-01 10:00:00+00:00",
		constants.ColIsReviewTask: int64(1),
		constants.ColIsCompleted:  "false",
		constants.ColArchiveName:  nil,
	}
	task, err := ToReviewTask(rec)
	if err != nil {
		t.Fatalf("ToReviewTask() error = %v", err)
	}
	if task.ID != id || task.Title != "Ch2_Review" || !task.IsReviewTask || task.IsCompleted || task.ArchiveName != "" {
		t.Errorf("task = %+v", task)
	}
	if want := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC); !task.DueDate.Equal(want) {
		t.Errorf("due = %v", task.DueDate)
	}
	if task.Status() != constants.TaskStatusPending {
		t.Errorf("status = %s", task.Status())
	}
}

func TestToReviewTaskRejectsGarbage(t *testing.T) {
	if _, err := ToReviewTask(entity.Record{constants.ColID: "nope"}); err == nil {
		t.Error("expected uuid error")
	}
	if _, err := ToReviewTask(entity.Record{constants.ColID: uuid.NewString(), constants.ColDueDate: 12}); err == nil {
		t.Error("expected time error")
	}
}

func TestToRecordRoundTrip(t *testing.T) {
	in := &entity.ReviewTask{
		ID:           uuid.New(),
		OwnerID:      "o",
		Title:        "A_Review",
		DueDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		IsReviewTask: true,
		ArchiveName:  "A",
		CreatedAt:    time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	out, err := ToReviewTask(ToRecord(in))
	if err != nil {
		t.Fatal(err)
	}
	if *out != *in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestParseDueDate(t *testing.T) {
	d, err := ParseDueDate("2026-02-03")
	if err != nil || !d.Equal(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDueDate(ymd) = %v, %v", d, err)
	}
	d, err = ParseDueDate("2026-02-03T10:30:00+09:00")
	if err != nil || d.UTC().Hour() != 1 {
		t.Errorf("ParseDueDate(rfc3339) = %v, %v", d, err)
	}
	if _, err := ParseDueDate("tomorrow"); err == nil {
		t.Error("expected error")
	}
}
