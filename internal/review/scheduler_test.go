package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/study-notebook/constants"
	"github.com/joseph-ayodele/study-notebook/internal/common"
	"github.com/joseph-ayodele/study-notebook/internal/entity"
	"github.com/joseph-ayodele/study-notebook/internal/repository"
	"github.com/joseph-ayodele/study-notebook/internal/utils"
)

// memStore keeps rows in memory and counts round-trips.
type memStore struct {
	mu      sync.Mutex
	rows    []entity.Record
	inserts int
	updates int
	err     error
}

func (m *memStore) Insert(_ context.Context, table string, rec entity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.err != nil {
		return m.err
	}
	if table != constants.TasksTable {
		return errors.New("unexpected table " + table)
	}
	cp := entity.Record{}
	for k, v := range rec {
		cp[k] = v
	}
	m.rows = append(m.rows, cp)
	return nil
}

func (m *memStore) Update(_ context.Context, _ string, patch, match entity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.err != nil {
		return m.err
	}
	for _, r := range m.rows {
		hit := true
		for k, v := range match {
			if r[k] != v {
				hit = false
			}
		}
		if hit {
			for k, v := range patch {
				r[k] = v
			}
		}
	}
	return nil
}

func (m *memStore) task(t *testing.T, i int) *entity.ReviewTask {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	task, err := utils.ToReviewTask(m.rows[i])
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func TestCreateReviewTaskDefaults(t *testing.T) {
	store := &memStore{}
	s := NewScheduler(store, nil)

	before := time.Now()
	res := s.CreateReviewTask(context.Background(), "user-1", "Chapter1", nil)
	after := time.Now()
	if !res.Success || res.Err != nil || res.Code() != "" {
		t.Fatalf("result = %+v", res)
	}
	if store.inserts != 1 {
		t.Fatalf("inserts = %d, want exactly 1", store.inserts)
	}

	task := store.task(t, 0)
	if task.DueDate.Before(before.Add(24*time.Hour)) || task.DueDate.After(after.Add(24*time.Hour)) {
		t.Errorf("due date %v not within a day of the call", task.DueDate)
	}
	if task.Title != "Chapter1_Review" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Description != Description("Chapter1") || task.ArchiveName != "Chapter1" {
		t.Errorf("archive reference missing: %+v", task)
	}
	if !task.IsReviewTask || task.IsCompleted || task.OwnerID != "user-1" {
		t.Errorf("flags = %+v", task)
	}
	if task.ID == uuid.Nil {
		t.Error("task id not generated")
	}
}

func TestCreateReviewTaskExplicitAndPastDueDate(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	s := NewScheduler(store, nil, WithClock(func() time.Time { return now }))

	for _, due := range []time.Time{now.AddDate(0, 0, 7), now.AddDate(-1, 0, 0)} {
		if res := s.CreateReviewTask(context.Background(), "u", "Archive", &due); !res.Success {
			t.Fatalf("CreateReviewTask(%v) = %+v", due, res)
		}
	}
	if got := store.task(t, 0).DueDate; !got.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("explicit due date = %v", got)
	}
	if got := store.task(t, 1).DueDate; !got.Equal(now.AddDate(-1, 0, 0)) {
		t.Errorf("past due date = %v", got)
	}
}

func TestCreateReviewTaskDefaultDelayOption(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	s := NewScheduler(store, nil, WithClock(func() time.Time { return now }), WithDefaultDelay(72*time.Hour))
	s.CreateReviewTask(context.Background(), "u", "A", nil)
	if got := store.task(t, 0).DueDate; !got.Equal(now.Add(72 * time.Hour)) {
		t.Errorf("due date = %v", got)
	}
}

func TestCreateReviewTaskDuplicates(t *testing.T) {
	store := &memStore{}
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	n := 0
	s := NewScheduler(store, nil, WithIDGenerator(func() uuid.UUID { n++; return ids[n-1] }))

	for i := 0; i < 2; i++ {
		if res := s.CreateReviewTask(context.Background(), "u", "Chapter1", nil); !res.Success {
			t.Fatalf("call %d: %+v", i, res)
		}
	}
	if len(store.rows) != 2 {
		t.Fatalf("expected two stored records, got %d", len(store.rows))
	}
	if store.task(t, 0).ID == store.task(t, 1).ID {
		t.Error("duplicate records should have distinct ids")
	}
}

func TestUpdateReviewTaskStatusToggles(t *testing.T) {
	store := &memStore{}
	id := uuid.New()
	s := NewScheduler(store, nil, WithIDGenerator(func() uuid.UUID { return id }))
	s.CreateReviewTask(context.Background(), "u", "Chapter1", nil)

	for _, want := range []bool{true, false} {
		if res := s.UpdateReviewTaskStatus(context.Background(), id.String(), want); !res.Success {
			t.Fatalf("update(%v) = %+v", want, res)
		}
		if got := store.task(t, 0).IsCompleted; got != want {
			t.Errorf("is_completed = %v, want %v", got, want)
		}
	}
	if store.updates != 2 {
		t.Errorf("updates = %d", store.updates)
	}
	if res := s.UpdateReviewTaskStatus(context.Background(), uuid.NewString(), true); !res.Success {
		t.Errorf("unknown id should not be checked, got %+v", res)
	}
}

func TestStoreFailureIsReturnedAsData(t *testing.T) {
	storeErr := &common.StoreError{Op: "insert", Table: "tasks", Code: "42501", Message: "permission denied"}
	store := &memStore{err: storeErr}
	s := NewScheduler(store, nil)

	res := s.CreateReviewTask(context.Background(), "u", "Chapter1", nil)
	if res.Success || !errors.Is(res.Err, storeErr) || res.Code() != "42501" {
		t.Errorf("create result = %+v", res)
	}
	res = s.UpdateReviewTaskStatus(context.Background(), uuid.NewString(), true)
	if res.Success || res.Code() != "42501" {
		t.Errorf("update result = %+v", res)
	}
}

func TestEmptyArgumentsFailWithoutStoreCall(t *testing.T) {
	store := &memStore{}
	s := NewScheduler(store, nil)
	ctx := context.Background()

	results := []Result{
		s.CreateReviewTask(ctx, "", "Chapter1", nil),
		s.CreateReviewTask(ctx, "u", "  ", nil),
		s.UpdateReviewTaskStatus(ctx, "", true),
	}
	for i, res := range results {
		if res.Success || !common.IsValidation(res.Err) || res.Code() != "INVALID_INPUT" {
			t.Errorf("result %d = %+v", i, res)
		}
	}
	if store.inserts+store.updates != 0 {
		t.Errorf("store called %d times", store.inserts+store.updates)
	}
}

func TestListWithoutListerFails(t *testing.T) {
	s := NewScheduler(&memStore{}, nil)
	if _, err := s.ListReviewTasks(context.Background(), "u", ListOptions{}); err == nil {
		t.Fatal("expected error when store cannot list")
	}
}

func TestSchedulerAgainstSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := repository.OpenSQLite(ctx, repository.MemoryDSN("review_"+uuid.NewString()), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer repository.Close(db, nil)
	if err := repository.Migrate(ctx, db); err != nil {
		t.Fatal(err)
	}
	store := repository.NewRecordStore(db, nil)

	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	s := NewScheduler(store, nil, WithClock(func() time.Time { return now }))

	past := now.AddDate(0, 0, -3)
	for _, c := range []struct {
		owner, archive string
		due            *time.Time
	}{
		{"u", "Biology", nil},
		{"u", "History", &past},
		{"u", "History", &past},
		{"other", "Math", nil},
	} {
		if res := s.CreateReviewTask(ctx, c.owner, c.archive, c.due); !res.Success {
			t.Fatalf("create %s: %+v", c.archive, res)
		}
	}
	// a user task in the same table is not a review
	if err := store.Insert(ctx, constants.TasksTable, entity.Record{
		constants.ColID: uuid.NewString(), constants.ColOwnerID: "u", constants.ColTitle: "Buy pens",
		constants.ColDescription: "", constants.ColDueDate: now, constants.ColIsReviewTask: false,
		constants.ColIsCompleted: false, constants.ColCreatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	tasks, err := s.ListReviewTasks(ctx, "u", ListOptions{})
	if err != nil {
		t.Fatalf("ListReviewTasks() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 review tasks, got %d", len(tasks))
	}
	if tasks[0].ArchiveName != "History" || tasks[2].ArchiveName != "Biology" {
		t.Errorf("not ordered by due date: %s, %s, %s", tasks[0].ArchiveName, tasks[1].ArchiveName, tasks[2].ArchiveName)
	}

	if res := s.UpdateReviewTaskStatus(ctx, tasks[0].ID.String(), true); !res.Success {
		t.Fatalf("update: %+v", res)
	}
	open, _ := s.ListReviewTasks(ctx, "u", ListOptions{})
	all, _ := s.ListReviewTasks(ctx, "u", ListOptions{IncludeCompleted: true})
	if len(open) != 2 || len(all) != 3 {
		t.Errorf("open=%d all=%d", len(open), len(all))
	}
	due, _ := s.ListReviewTasks(ctx, "u", ListOptions{DueBefore: now, IncludeCompleted: true})
	if len(due) != 2 {
		t.Errorf("due before now = %d, want the two past-dated tasks", len(due))
	}
}
