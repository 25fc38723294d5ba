package ocr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/study-notebook/constants"
	"github.com/joseph-ayodele/study-notebook/internal/common"
)

// Config tunes one Extractor.
type Config struct {
	Languages   []string // default kor+eng
	PageSegMode int      // 1..13; 0 selects 3 (fully automatic)

	HeicConverter    string // heif-convert | magick | sips
	ArtifactCacheDir string // HEIC->PNG cache; empty disables caching

	HTTPClient    *http.Client
	MaxImageBytes int64 // default 32 MiB

	// Runner executes HEIC converters; defaults to ExecRunner.
	Runner Runner
}

// Extractor turns a page image into a normalized Result. It owns the
// recognizer handle it is given; nothing is shared through package state.
type Extractor struct {
	cfg    Config
	rec    Recognizer
	runner Runner
	logger *slog.Logger
}

func NewExtractor(rec Recognizer, cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = ParseLanguages(constants.DefaultOCRLanguage)
	}
	if cfg.PageSegMode == 0 {
		cfg.PageSegMode = constants.DefaultPageSegMode
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 32 << 20
	}
	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &Extractor{cfg: cfg, rec: rec, runner: runner, logger: logger}
}

// Extract loads src, runs the recognizer once and normalizes its output.
func (e *Extractor) Extract(ctx context.Context, src Source) (Result, error) {
	start := time.Now()
	logger := common.LoggerFrom(ctx, e.logger)
	if e.rec == nil {
		return Result{}, common.NewAppError("OCR_FAILED", "no recognizer configured", common.ErrInternal)
	}

	img, err := e.load(ctx, src)
	if err != nil {
		logger.Error("ocr source rejected", "source", src.String(), "error", err)
		return Result{}, common.NewAppError("OCR_SOURCE_INVALID", "cannot load page image", errors.Join(common.ErrInvalidInput, err))
	}
	if img.cleanup != nil {
		defer img.cleanup()
	}

	raw, err := e.rec.Recognize(ctx, Request{
		Image:       img.data,
		Path:        img.path,
		Languages:   e.cfg.Languages,
		PageSegMode: e.cfg.PageSegMode,
	})
	if err != nil {
		logger.Error("ocr recognition failed", "source", src.String(), "error", err)
		return Result{}, common.NewAppError("OCR_FAILED", "recognition failed", err)
	}

	res := Normalize(raw)
	logger.Info("ocr extraction ok",
		"source", src.String(),
		"format", img.format,
		"blocks", len(res.Blocks),
		"bytes", len(res.Text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
