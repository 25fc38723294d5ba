package tesseract

import (
	"log/slog"

	"github.com/joseph-ayodele/study-notebook/internal/common"
	"github.com/joseph-ayodele/study-notebook/internal/ocr"
)

// NewRecognizer picks the engine named by cfg.Engine: "cli" shells out to the
// tesseract binary, anything else links libtesseract. The engine is built on
// first use.
func NewRecognizer(cfg common.OCRConfig, logger *slog.Logger) *ocr.Lazy {
	if logger == nil {
		logger = slog.Default()
	}
	return ocr.NewLazy(func() (ocr.Recognizer, error) {
		logger.Info("ocr engine ready", "engine", cfg.Engine, "lang", cfg.Language, "psm", cfg.PageSegMode)
		if cfg.Engine == "cli" {
			return ocr.NewCLIRecognizer(ocr.CLIConfig{
				Tesseract:   cfg.Tesseract,
				TessdataDir: cfg.TessdataDir,
			}, nil, logger), nil
		}
		return New(Config{TessdataPrefix: cfg.TessdataDir}), nil
	})
}

// NewExtractor wires an ocr.Extractor from application config.
func NewExtractor(cfg common.OCRConfig, logger *slog.Logger) (*ocr.Extractor, *ocr.Lazy) {
	rec := NewRecognizer(cfg, logger)
	return ocr.NewExtractor(rec, ocr.Config{
		Languages:        ocr.ParseLanguages(cfg.Language),
		PageSegMode:      cfg.PageSegMode,
		HeicConverter:    cfg.HeicConverter,
		ArtifactCacheDir: cfg.ArtifactCacheDir,
	}, logger), rec
}
