package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/study-notebook/internal/common"
	"github.com/joseph-ayodele/study-notebook/internal/ocr"
	"github.com/joseph-ayodele/study-notebook/internal/ocr/tesseract"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	raw := flag.Bool("raw", false, "treat the argument as a raw engine result (JSON) and only normalize it; '-' reads stdin")
	flag.Usage = func() {
		_, _ = fmt.Fprintln(os.Stderr, "usage: runocr [-raw] <image path | http(s) url | raw.json | ->")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	arg := flag.Arg(0)

	if err := common.LoadDotEnv(".env"); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()

	var (
		res ocr.Result
		err error
	)
	start := time.Now()
	if *raw {
		res, err = normalizeFile(arg)
	} else {
		res, err = extract(cfg.OCR, arg, logger)
	}
	if err != nil {
		logger.Error("text extraction failed",
			"input", arg, "code", common.ErrorCode(err), "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("text extraction OK",
		"input", arg,
		"blocks", len(res.Blocks),
		"bytes", len(res.Text),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("write result", "error", err)
		os.Exit(1)
	}
}

func extract(cfg common.OCRConfig, arg string, logger *slog.Logger) (ocr.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	extractor, engine := tesseract.NewExtractor(cfg, logger)
	defer func() { _ = engine.Close() }()

	src := ocr.Source{Path: arg}
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		src = ocr.Source{URL: arg}
	}
	return extractor.Extract(ctx, src)
}

func normalizeFile(arg string) (ocr.Result, error) {
	var (
		data []byte
		err  error
	)
	if arg == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return ocr.Result{}, err
	}
	raw, err := ocr.DecodeRaw(data)
	if err != nil {
		return ocr.Result{}, err
	}
	return ocr.Normalize(raw), nil
}
