package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/study-notebook/internal/async"
	"github.com/joseph-ayodele/study-notebook/internal/common"
	"github.com/joseph-ayodele/study-notebook/internal/export"
	"github.com/joseph-ayodele/study-notebook/internal/ingest"
	"github.com/joseph-ayodele/study-notebook/internal/ocr"
	"github.com/joseph-ayodele/study-notebook/internal/ocr/tesseract"
	repo "github.com/joseph-ayodele/study-notebook/internal/repository"
	"github.com/joseph-ayodele/study-notebook/internal/review"
	"github.com/joseph-ayodele/study-notebook/internal/server"
	"github.com/joseph-ayodele/study-notebook/internal/utils"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem      = flag.Bool("inmem", true, "use in-memory SQLite instead of DB_URL")
		dir        = flag.String("dir", "", "directory of notebook page images (required)")
		exts       = flag.String("exts", "", "comma-separated extensions to include (default: all page image types)")
		skipHidden = flag.Bool("skip-hidden", true, "skip dot-files and dot-directories")
		workers    = flag.Int("workers", 4, "concurrent OCR workers")
		owner      = flag.String("owner", "", "owner id for review tasks (default: random uuid)")
		enroll     = flag.Bool("enroll", false, "create one review task per archive directory")
		dueStr     = flag.String("due", "", "review due date, RFC 3339 or YYYY-MM-DD (default: now + REVIEW_DEFAULT_DELAY)")
		out        = flag.String("out", "", "output XLSX report path (optional, defaults to parent directory)")
		watch      = flag.Bool("watch", false, "keep running and OCR pages added under --dir")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "notebook-pages.xlsx")
	}
	var due *time.Time
	if *dueStr != "" {
		d, err := utils.ParseDueDate(*dueStr)
		if err != nil {
			printError("Error: invalid --due date, use RFC 3339 or YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		due = &d
	}
	if *owner == "" {
		*owner = uuid.NewString()
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := common.LoadDotEnv(".env"); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.InMemory = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor, engine := tesseract.NewExtractor(cfg.OCR, logger)
	defer func() { _ = engine.Close() }()

	report := newReport()
	queue := async.NewExtractQueue(extractor, logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(512),
		async.WithProcessTimeout(cfg.OCR.Timeout),
		async.WithSink(func(o async.Outcome) { report.add(o, logger) }),
	)

	logger.Info("starting scan", "dir", *dir)
	pages, stats, err := ingest.ScanDirectory(ctx, *dir, splitExts(*exts), *skipHidden)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	for _, p := range pages {
		if p.Err != "" || p.Deduplicated {
			continue
		}
		if err := queue.Enqueue(ctx, pageJob(p.Path)); err != nil {
			logger.Error("failed to enqueue page", "path", p.Path, "error", err)
			break
		}
	}

	if *watch {
		watchLoop(ctx, *dir, *exts, *skipHidden, queue, logger)
	}
	queue.Shutdown(context.Background())

	rows := report.rows()
	xlsx, err := export.PagesXLSX(rows)
	if err != nil {
		logger.Error("failed to render report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	enrolled := 0
	if *enroll {
		reviewsOut := strings.TrimSuffix(*out, filepath.Ext(*out)) + "-reviews.xlsx"
		enrolled = enrollArchives(cfg, *owner, report.archives(), due, reviewsOut, logger)
	}

	logger.Info("batch processing complete",
		"pages", len(rows),
		"failures", report.failures(),
		"reviews_created", enrolled,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Pages processed: %d\n", len(rows))
	fmt.Printf("- Failures: %d\n", report.failures())
	if *enroll {
		fmt.Printf("- Review tasks created: %d (owner %s)\n", enrolled, *owner)
	}
	fmt.Printf("- Output: %s\n", *out)
}

func pageJob(path string) async.Job {
	return async.Job{ID: path, Source: ocr.Source{Path: path}, TraceID: uuid.NewString()}
}

func splitExts(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func watchLoop(ctx context.Context, dir, exts string, skipHidden bool, queue async.Queue, logger *slog.Logger) {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		AllowedExts: ingest.ExtSet(splitExts(exts)),
		SkipHidden:  skipHidden,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return
	}
	logger.Info("watching for new pages", "dir", dir)
	for {
		select {
		case path, ok := <-events:
			if !ok {
				return
			}
			if err := queue.Enqueue(ctx, pageJob(path)); err != nil {
				logger.Warn("failed to enqueue page", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				logger.Warn("watcher error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// enrollArchives schedules one review per archive and writes the owner's
// review list to reviewsOut, since an in-memory store is gone on exit.
func enrollArchives(cfg *common.Config, owner string, archives []string, due *time.Time, reviewsOut string, logger *slog.Logger) int {
	ctx := context.Background()
	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return 0
	}
	defer server.CloseDB(db, logger)

	scheduler := review.NewScheduler(repo.NewRecordStore(db, logger), logger,
		review.WithDefaultDelay(cfg.Review.DefaultDelay),
	)
	created := 0
	for _, a := range archives {
		if r := scheduler.CreateReviewTask(ctx, owner, a, due); r.Success {
			created++
		} else {
			logger.Error("failed to create review task", "archive", a, "code", r.Code(), "error", r.Err)
		}
	}

	xlsx, err := export.NewService(scheduler, logger).ExportReviewTasksXLSX(ctx, owner, true)
	if err != nil {
		logger.Error("failed to export review tasks", "error", err)
		return created
	}
	if err := os.WriteFile(reviewsOut, xlsx, 0644); err != nil {
		logger.Error("failed to write review tasks", "path", reviewsOut, "error", err)
	}
	return created
}

// report collects worker outcomes; the sink runs on worker goroutines.
type report struct {
	mu       sync.Mutex
	pages    []export.PageRow
	archived map[string]struct{}
	failed   int
}

func newReport() *report {
	return &report{archived: map[string]struct{}{}}
}

func (r *report) add(o async.Outcome, logger *slog.Logger) {
	row := export.PageRow{Path: o.Job.Source.Path}
	if o.Err != nil {
		row.Error = o.Err.Error()
	} else {
		row.Blocks = len(o.Result.Blocks)
		row.Characters = len([]rune(o.Result.Text))
		row.MeanConfidence = meanConfidence(o.Result.Blocks)
		if err := writeSidecar(row.Path, o.Result); err != nil {
			logger.Error("failed to write ocr result", "path", row.Path, "error", err)
			row.Error = err.Error()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, row)
	if row.Error != "" {
		r.failed++
		return
	}
	r.archived[filepath.Base(filepath.Dir(row.Path))] = struct{}{}
}

func (r *report) rows() []export.PageRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]export.PageRow(nil), r.pages...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (r *report) archives() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.archived))
	for a := range r.archived {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func (r *report) failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// writeSidecar stores the normalized result next to the page as <page>.ocr.json.
func writeSidecar(pagePath string, res ocr.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(pagePath+".ocr.json", data, 0644)
}

func meanConfidence(blocks []ocr.TextBlock) *float64 {
	var sum float64
	n := 0
	for _, b := range blocks {
		if b.Confidence != nil {
			sum += *b.Confidence
			n++
		}
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}
