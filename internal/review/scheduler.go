// Package review schedules spaced-repetition review tasks for archived notes.
//
// The scheduler is stateless: every operation is one round-trip to the record
// store, with no read-before-write. Creating the same review twice stores two
// tasks, and a status update on an id that matches nothing still succeeds.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/study-notebook/constants"
	"github.com/joseph-ayodele/study-notebook/internal/common"
	"github.com/joseph-ayodele/study-notebook/internal/entity"
	"github.com/joseph-ayodele/study-notebook/internal/utils"
)

// Store is the record store as seen by the scheduler.
type Store interface {
	Insert(ctx context.Context, table string, rec entity.Record) error
	Update(ctx context.Context, table string, patch, match entity.Record) error
}

// Lister is the optional read side used by ListReviewTasks.
type Lister interface {
	Select(ctx context.Context, table string, q entity.SelectQuery) ([]entity.Record, error)
}

// Result is the outcome of a scheduler operation. Failures are data: Err
// holds the cause and is never nil when Success is false.
type Result struct {
	Success bool
	Err     error
}

func succeeded() Result { return Result{Success: true} }

func failed(err error) Result { return Result{Err: err} }

// Code returns the failure's error code, or "" on success.
func (r Result) Code() string {
	if r.Success {
		return ""
	}
	return common.ErrorCode(r.Err)
}

type Scheduler struct {
	store  Store
	lister Lister
	logger *slog.Logger

	now          func() time.Time
	newID        func() uuid.UUID
	defaultDelay time.Duration
}

type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithIDGenerator replaces uuid.New.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *Scheduler) { s.newID = gen }
}

// WithDefaultDelay sets how far ahead a review is due when no date is given.
func WithDefaultDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.defaultDelay = d
		}
	}
}

// WithLister sets the read side explicitly. By default the store is used when
// it also implements Lister.
func WithLister(l Lister) Option {
	return func(s *Scheduler) { s.lister = l }
}

func NewScheduler(store Store, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		store:        store,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.New,
		defaultDelay: constants.DefaultReviewDelay,
	}
	if l, ok := store.(Lister); ok {
		s.lister = l
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Description returns the description stored on a review task for archiveName.
func Description(archiveName string) string {
	return fmt.Sprintf("Review archived notes: %s", archiveName)
}

// CreateReviewTask enrolls archiveName for review by ownerID. dueDate may be
// nil (now + default delay) or any timestamp, past ones included.
func (s *Scheduler) CreateReviewTask(ctx context.Context, ownerID, archiveName string, dueDate *time.Time) Result {
	logger := common.LoggerFrom(ctx, s.logger)
	v := common.NewValidator().
		Field("owner_id", ownerID, common.Required).
		Field("archive_name", archiveName, common.Required)
	if err := v.Error(); err != nil {
		logger.Warn("review task rejected", "error", err)
		return failed(err)
	}

	now := s.now()
	due := now.Add(s.defaultDelay)
	if dueDate != nil {
		due = *dueDate
	}
	task := &entity.ReviewTask{
		ID:           s.newID(),
		OwnerID:      ownerID,
		Title:        archiveName + constants.ReviewTitleSuffix,
		Description:  Description(archiveName),
		DueDate:      due.UTC(),
		IsReviewTask: true,
		ArchiveName:  archiveName,
		IsCompleted:  false,
		CreatedAt:    now.UTC(),
	}
	if err := s.store.Insert(ctx, constants.TasksTable, utils.ToRecord(task)); err != nil {
		logger.Error("failed to create review task",
			"archive_name", archiveName,
			"code", common.ErrorCode(err),
			"error", err,
		)
		return failed(err)
	}
	logger.Info("review task created", "task_id", task.ID, "archive_name", archiveName, "due_date", task.DueDate)
	return succeeded()
}

// UpdateReviewTaskStatus sets only the completion flag of taskID. Both
// directions are allowed.
func (s *Scheduler) UpdateReviewTaskStatus(ctx context.Context, taskID string, isCompleted bool) Result {
	logger := common.LoggerFrom(ctx, s.logger)
	if err := common.NewValidator().Field("task_id", taskID, common.Required).Error(); err != nil {
		logger.Warn("review status update rejected", "error", err)
		return failed(err)
	}

	patch := entity.Record{constants.ColIsCompleted: isCompleted}
	match := entity.Record{constants.ColID: taskID}
	if err := s.store.Update(ctx, constants.TasksTable, patch, match); err != nil {
		logger.Error("failed to update review task status",
			"task_id", taskID,
			"is_completed", isCompleted,
			"code", common.ErrorCode(err),
			"error", err,
		)
		return failed(err)
	}
	logger.Info("review task status updated", "task_id", taskID, "status", constants.StatusOf(isCompleted))
	return succeeded()
}

// ListOptions narrows ListReviewTasks. A zero DueBefore means no upper bound.
type ListOptions struct {
	DueBefore        time.Time
	IncludeCompleted bool
}

// ListReviewTasks returns ownerID's review tasks ordered by due date.
func (s *Scheduler) ListReviewTasks(ctx context.Context, ownerID string, opts ListOptions) ([]*entity.ReviewTask, error) {
	if err := common.NewValidator().Field("owner_id", ownerID, common.Required).Error(); err != nil {
		return nil, err
	}
	if s.lister == nil {
		return nil, common.NewAppError("NOT_SUPPORTED", "record store cannot list tasks", common.ErrInternal)
	}

	where := []entity.Cond{
		{Column: constants.ColOwnerID, Op: entity.CondEQ, Value: ownerID},
		{Column: constants.ColIsReviewTask, Op: entity.CondEQ, Value: true},
	}
	if !opts.IncludeCompleted {
		where = append(where, entity.Cond{Column: constants.ColIsCompleted, Op: entity.CondEQ, Value: false})
	}
	if !opts.DueBefore.IsZero() {
		where = append(where, entity.Cond{Column: constants.ColDueDate, Op: entity.CondLTE, Value: opts.DueBefore.UTC()})
	}

	rows, err := s.lister.Select(ctx, constants.TasksTable, entity.SelectQuery{
		Where:   where,
		OrderBy: []string{constants.ColDueDate},
	})
	if err != nil {
		common.LoggerFrom(ctx, s.logger).Error("failed to list review tasks", "error", err)
		return nil, err
	}
	tasks := make([]*entity.ReviewTask, 0, len(rows))
	for _, r := range rows {
		t, err := utils.ToReviewTask(r)
		if err != nil {
			return nil, common.NewAppError("DECODE_ERROR", "malformed task row", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
