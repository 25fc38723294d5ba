package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/study-notebook/internal/entity"
	"github.com/joseph-ayodele/study-notebook/internal/review"
)

// TaskLister is the scheduler read side the export needs.
type TaskLister interface {
	ListReviewTasks(ctx context.Context, ownerID string, opts review.ListOptions) ([]*entity.ReviewTask, error)
}

// Service produces XLSX bytes for exports.
type Service struct {
	tasks  TaskLister
	logger *slog.Logger
}

func NewService(tasks TaskLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tasks: tasks, logger: logger}
}

const (
	ReviewSheet = "Reviews"
	PagesSheet  = "Pages"
)

// ReviewHeaders are the column titles of the Reviews sheet.
var ReviewHeaders = []string{
	"Due Date",
	"Archive",
	"Title",
	"Description",
	"Status",
	"Task ID",
}

// ExportReviewTasksXLSX returns a workbook listing ownerID's review tasks by
// due date. Completed tasks are left out unless includeCompleted is set.
func (s *Service) ExportReviewTasksXLSX(ctx context.Context, ownerID string, includeCompleted bool) ([]byte, error) {
	start := time.Now()
	tasks, err := s.tasks.ListReviewTasks(ctx, ownerID, review.ListOptions{IncludeCompleted: includeCompleted})
	if err != nil {
		return nil, fmt.Errorf("query review tasks: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := useSheet(f, ReviewSheet); err != nil {
		return nil, err
	}
	writeRow(f, ReviewSheet, 1, toAny(ReviewHeaders))

	for i, t := range tasks {
		writeRow(f, ReviewSheet, i+2, []any{
			t.DueDate.UTC().Format("2006-01-02 15:04"),
			t.ArchiveName,
			t.Title,
			truncate(t.Description, 140),
			string(t.Status()),
			t.ID.String(),
		})
	}

	// Widen a few columns
	_ = f.SetColWidth(ReviewSheet, "A", "A", 18) // due
	_ = f.SetColWidth(ReviewSheet, "B", "C", 28) // archive, title
	_ = f.SetColWidth(ReviewSheet, "D", "D", 48) // description
	_ = f.SetColWidth(ReviewSheet, "E", "E", 12) // status
	_ = f.SetColWidth(ReviewSheet, "F", "F", 38) // id

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"owner_id", ownerID,
		"rows", len(tasks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// PageRow is one OCR'd page in a batch report.
type PageRow struct {
	Path           string
	Blocks         int
	Characters     int
	MeanConfidence *float64
	Error          string
}

// PagesXLSX renders a batch extraction report.
func PagesXLSX(rows []PageRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := useSheet(f, PagesSheet); err != nil {
		return nil, err
	}
	writeRow(f, PagesSheet, 1, []any{"Page", "Blocks", "Characters", "Mean Confidence", "Error"})
	for i, r := range rows {
		var conf any = ""
		if r.MeanConfidence != nil {
			conf = *r.MeanConfidence
		}
		writeRow(f, PagesSheet, i+2, []any{r.Path, r.Blocks, r.Characters, conf, r.Error})
	}
	_ = f.SetColWidth(PagesSheet, "A", "A", 60)
	_ = f.SetColWidth(PagesSheet, "E", "E", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// useSheet creates name, makes it active and drops the default sheet.
func useSheet(f *excelize.File, name string) error {
	if index, _ := f.GetSheetIndex(name); index == -1 {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	if name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(name)
	f.SetActiveSheet(activeIndex)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) {
	for i, v := range vals {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
