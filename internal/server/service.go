package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/study-notebook/internal/common"
	"github.com/joseph-ayodele/study-notebook/internal/entity"
	"github.com/joseph-ayodele/study-notebook/internal/ocr"
	"github.com/joseph-ayodele/study-notebook/internal/review"
	"github.com/joseph-ayodele/study-notebook/internal/utils"
)

// Extractor runs OCR on one page.
type Extractor interface {
	Extract(ctx context.Context, src ocr.Source) (ocr.Result, error)
}

// Scheduler is the review scheduling API exposed over gRPC.
type Scheduler interface {
	CreateReviewTask(ctx context.Context, ownerID, archiveName string, dueDate *time.Time) review.Result
	UpdateReviewTaskStatus(ctx context.Context, taskID string, isCompleted bool) review.Result
	ListReviewTasks(ctx context.Context, ownerID string, opts review.ListOptions) ([]*entity.ReviewTask, error)
}

// Exporter renders review tasks as a workbook.
type Exporter interface {
	ExportReviewTasksXLSX(ctx context.Context, ownerID string, includeCompleted bool) ([]byte, error)
}

type StudyService struct {
	extractor Extractor
	scheduler Scheduler
	exporter  Exporter
	logger    *slog.Logger
}

func NewStudyService(extractor Extractor, scheduler Scheduler, exporter Exporter, logger *slog.Logger) *StudyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudyService{extractor: extractor, scheduler: scheduler, exporter: exporter, logger: logger}
}

// NormalizeOCR takes a raw recognition result {text, blocks:[{text, bbox:{x0,y0,x1,y1}, confidence}]}
// and returns {text, blocks:[{text, bbox:{x,y,w,h}, confidence?}]}.
func (s *StudyService) NormalizeOCR(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	data, err := req.MarshalJSON()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "request: %v", err)
	}
	raw, err := ocr.DecodeRaw(data)
	if err != nil {
		common.LoggerFrom(ctx, s.logger).Warn("rejected raw ocr result", "error", err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return toStruct(ocr.Normalize(raw))
}

// ExtractText runs OCR on encoded image bytes.
func (s *StudyService) ExtractText(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if s.extractor == nil {
		return nil, status.Error(codes.Unimplemented, "ocr engine not configured")
	}
	if len(req.GetValue()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "image bytes are required")
	}
	res, err := s.extractor.Extract(ctx, ocr.Source{Data: req.GetValue()})
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, status.Error(codes.DeadlineExceeded, err.Error())
		}
		return nil, common.InternalErrorf("extract text: %v", err)
	}
	return toStruct(res)
}

// CreateReviewTask takes {owner_id, archive_name, due_date?} where due_date is
// RFC 3339 or YYYY-MM-DD. The outcome is returned as {success, error?}.
func (s *StudyService) CreateReviewTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fields{req}
	ownerID, err := f.str("owner_id")
	if err != nil {
		return nil, err
	}
	archive, err := f.str("archive_name")
	if err != nil {
		return nil, err
	}
	var due *time.Time
	if ds, err := f.str("due_date"); err != nil {
		return nil, err
	} else if ds != "" {
		d, err := utils.ParseDueDate(ds)
		if err != nil {
			return nil, common.InvalidArgumentErrorf("due_date invalid (RFC 3339 or YYYY-MM-DD): %v", err)
		}
		due = &d
	}
	ctx = common.WithOwnerID(ctx, ownerID)
	return resultStruct(s.scheduler.CreateReviewTask(ctx, ownerID, archive, due))
}

// UpdateReviewTaskStatus takes {task_id, is_completed}.
func (s *StudyService) UpdateReviewTaskStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fields{req}
	taskID, err := f.str("task_id")
	if err != nil {
		return nil, err
	}
	done, ok, err := f.boolean("is_completed")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.InvalidArgumentError("is_completed is required")
	}
	return resultStruct(s.scheduler.UpdateReviewTaskStatus(ctx, taskID, done))
}

// ListReviewTasks takes {owner_id, include_completed?, due_before?} and
// returns {tasks:[...]} ordered by due date.
func (s *StudyService) ListReviewTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fields{req}
	ownerID, err := f.str("owner_id")
	if err != nil {
		return nil, err
	}
	if err := common.ValidateAndReturnError(common.NewValidator().Field("owner_id", ownerID, common.Required)); err != nil {
		return nil, err
	}
	var opts review.ListOptions
	if opts.IncludeCompleted, _, err = f.boolean("include_completed"); err != nil {
		return nil, err
	}
	if ds, err := f.str("due_before"); err != nil {
		return nil, err
	} else if ds != "" {
		if opts.DueBefore, err = utils.ParseDueDate(ds); err != nil {
			return nil, common.InvalidArgumentErrorf("due_before invalid: %v", err)
		}
	}

	ctx = common.WithOwnerID(ctx, ownerID)
	tasks, err := s.scheduler.ListReviewTasks(ctx, ownerID, opts)
	if err != nil {
		common.LoggerFrom(ctx, s.logger).Error("failed to list review tasks", "error", err)
		return nil, common.InternalErrorf("list review tasks: %v", err)
	}
	if tasks == nil {
		tasks = []*entity.ReviewTask{}
	}
	return toStruct(map[string]any{"tasks": tasks})
}

// ExportReviewTasks takes {owner_id, include_completed?} and returns xlsx bytes.
func (s *StudyService) ExportReviewTasks(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	f := fields{req}
	ownerID, err := f.str("owner_id")
	if err != nil {
		return nil, err
	}
	if err := common.ValidateAndReturnError(common.NewValidator().Field("owner_id", ownerID, common.Required)); err != nil {
		return nil, err
	}
	include, _, err := f.boolean("include_completed")
	if err != nil {
		return nil, err
	}
	ctx = common.WithOwnerID(ctx, ownerID)
	xlsx, err := s.exporter.ExportReviewTasksXLSX(ctx, ownerID, include)
	if err != nil {
		common.LoggerFrom(ctx, s.logger).Error("export.xlsx.failed", "error", err)
		return nil, common.InternalError(err.Error())
	}
	return wrapperspb.Bytes(xlsx), nil
}

// resultStruct renders a scheduler outcome as data.
func resultStruct(r review.Result) (*structpb.Struct, error) {
	out := map[string]any{"success": r.Success}
	if !r.Success {
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		out["error"] = map[string]any{"code": r.Code(), "message": msg}
	}
	return structpb.NewStruct(out)
}

// toStruct converts v through its JSON form so json tags (and omitempty)
// decide the field names.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	st := &structpb.Struct{}
	if err := st.UnmarshalJSON(data); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return st, nil
}

type fields struct{ st *structpb.Struct }

// str returns the string field name, "" when absent or null.
func (f fields) str(name string) (string, error) {
	v, ok := f.st.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", common.InvalidArgumentErrorf("%s must be a string", name)
	}
}

// boolean returns the bool field name and whether it was present.
func (f fields) boolean(name string) (bool, bool, error) {
	v, ok := f.st.GetFields()[name]
	if !ok {
		return false, false, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return k.BoolValue, true, nil
	case *structpb.Value_NullValue:
		return false, false, nil
	default:
		return false, false, common.InvalidArgumentErrorf("%s must be a boolean", name)
	}
}
