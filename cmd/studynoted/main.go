package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joseph-ayodele/study-notebook/internal/common"
	"github.com/joseph-ayodele/study-notebook/internal/export"
	"github.com/joseph-ayodele/study-notebook/internal/ocr/tesseract"
	repo "github.com/joseph-ayodele/study-notebook/internal/repository"
	"github.com/joseph-ayodele/study-notebook/internal/review"
	"github.com/joseph-ayodele/study-notebook/internal/server"
)

func main() {
	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := common.LoadDotEnv(".env"); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "in_memory", cfg.Database.InMemory)
		os.Exit(1)
	}
	defer server.CloseDB(db, logger)

	if err := server.PingDB(ctx, db, logger, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	extractor, engine := tesseract.NewExtractor(cfg.OCR, logger)
	defer func() { _ = engine.Close() }()

	scheduler := review.NewScheduler(repo.NewRecordStore(db, logger), logger,
		review.WithDefaultDelay(cfg.Review.DefaultDelay),
	)
	exporter := export.NewService(scheduler, logger)
	svc := server.NewStudyService(extractor, scheduler, exporter, logger)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer, hs := server.NewGRPCServer(svc, logger)

	logger.Info("studynoted listening", "addr", addr, "ocr_engine", cfg.OCR.Engine)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	hs.Shutdown()
	grpcServer.GracefulStop()
}
