package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/study-notebook/constants"
	"github.com/joseph-ayodele/study-notebook/internal/entity"
)

// ToReviewTask maps a tasks row to the entity. Drivers disagree on how they
// hand back booleans, times and uuids, so each column is coerced.
func ToReviewTask(rec entity.Record) (*entity.ReviewTask, error) {
	t := &entity.ReviewTask{}
	var err error
	if t.ID, err = UUIDValue(rec[constants.ColID]); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ColID, err)
	}
	t.OwnerID = StringValue(rec[constants.ColOwnerID])
	t.Title = StringValue(rec[constants.ColTitle])
	t.Description = StringValue(rec[constants.ColDescription])
	t.ArchiveName = StringValue(rec[constants.ColArchiveName])
	if t.DueDate, err = TimeValue(rec[constants.ColDueDate]); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ColDueDate, err)
	}
	if v, ok := rec[constants.ColCreatedAt]; ok && v != nil {
		if t.CreatedAt, err = TimeValue(v); err != nil {
			return nil, fmt.Errorf("%s: %w", constants.ColCreatedAt, err)
		}
	}
	if t.IsReviewTask, err = BoolValue(rec[constants.ColIsReviewTask]); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ColIsReviewTask, err)
	}
	if t.IsCompleted, err = BoolValue(rec[constants.ColIsCompleted]); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ColIsCompleted, err)
	}
	return t, nil
}

// ToRecord is the inverse of ToReviewTask.
func ToRecord(t *entity.ReviewTask) entity.Record {
	return entity.Record{
		constants.ColID:           t.ID.String(),
		constants.ColOwnerID:      t.OwnerID,
		constants.ColTitle:        t.Title,
		constants.ColDescription:  t.Description,
		constants.ColDueDate:      t.DueDate,
		constants.ColIsReviewTask: t.IsReviewTask,
		constants.ColArchiveName:  t.ArchiveName,
		constants.ColIsCompleted:  t.IsCompleted,
		constants.ColCreatedAt:    t.CreatedAt,
	}
}

func StringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func UUIDValue(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		return uuid.Parse(x)
	case []byte:
		if len(x) == 16 {
			return uuid.FromBytes(x)
		}
		return uuid.ParseBytes(x)
	default:
		return uuid.Nil, fmt.Errorf("unexpected uuid value %T", v)
	}
}

func BoolValue(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case string:
		return strconv.ParseBool(x)
	default:
		return false, fmt.Errorf("unexpected bool value %T", v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func TimeValue(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable time %q", x)
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", v)
	}
}

// ParseDueDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates, the
// latter as midnight UTC.
func ParseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return ParseYMD(s)
}

func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	// strip time to midnight UTC to match DATE semantics
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
