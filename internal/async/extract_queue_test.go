package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/study-notebook/internal/ocr"
)

type fakeExtractor struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeExtractor) Extract(ctx context.Context, src ocr.Source) (ocr.Result, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	}
	if src.Path == "bad" {
		return ocr.Result{}, errors.New("unreadable page")
	}
	return ocr.Result{Text: src.Path, Blocks: []ocr.TextBlock{}}, nil
}

func TestExtractQueueProcessesAll(t *testing.T) {
	ext := &fakeExtractor{delay: 5 * time.Millisecond}
	var mu sync.Mutex
	got := map[string]Outcome{}
	q := NewExtractQueue(ext, nil,
		WithWorkers(3),
		WithQueueSize(2),
		WithSink(func(o Outcome) {
			mu.Lock()
			got[o.Job.ID] = o
			mu.Unlock()
		}),
	)

	for i := 0; i < 10; i++ {
		path := fmt.Sprintf("p%d.png", i)
		if i == 4 {
			path = "bad"
		}
		if err := q.Enqueue(context.Background(), Job{ID: fmt.Sprint(i), Source: ocr.Source{Path: path}}); err != nil {
			t.Fatalf("Enqueue(%d) error = %v", i, err)
		}
	}
	q.Shutdown(context.Background())

	if len(got) != 10 {
		t.Fatalf("outcomes = %d, want 10", len(got))
	}
	if got["4"].Err == nil {
		t.Error("failed page should carry its error")
	}
	if got["7"].Result.Text != "p7.png" || got["7"].Job.SubmittedAt.IsZero() {
		t.Errorf("outcome 7 = %+v", got["7"])
	}
	if p := ext.peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestExtractQueueRejectsAfterShutdown(t *testing.T) {
	q := NewExtractQueue(&fakeExtractor{}, nil, WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	if err := q.Enqueue(context.Background(), Job{ID: "late"}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("error = %v, want ErrQueueClosed", err)
	}
}

func TestExtractQueueTimeout(t *testing.T) {
	var out Outcome
	q := NewExtractQueue(&fakeExtractor{delay: time.Second}, nil,
		WithWorkers(1),
		WithProcessTimeout(10*time.Millisecond),
		WithSink(func(o Outcome) { out = o }),
	)
	if err := q.Enqueue(context.Background(), Job{ID: "slow", Source: ocr.Source{Path: "p"}}); err != nil {
		t.Fatal(err)
	}
	q.Shutdown(context.Background())
	if !errors.Is(out.Err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", out.Err)
	}
}

func TestExtractQueueEnqueueHonorsContext(t *testing.T) {
	block := make(chan struct{})
	ext := &blockingExtractor{release: block, started: make(chan struct{})}
	q := NewExtractQueue(ext, nil, WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(block)
		q.Shutdown(context.Background())
	}()

	// one job held by the worker, one in the buffer
	_ = q.Enqueue(context.Background(), Job{ID: "a"})
	<-ext.started
	_ = q.Enqueue(context.Background(), Job{ID: "b"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, Job{ID: "c"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}

type blockingExtractor struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingExtractor) Extract(context.Context, ocr.Source) (ocr.Result, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return ocr.Result{}, nil
}
