package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/provalon/quality-engine/internal/application/service"
	"github.com/provalon/quality-engine/internal/config"
	"github.com/provalon/quality-engine/internal/infrastructure/persistence/repository"
	"github.com/provalon/quality-engine/internal/infrastructure/persistence/sqlite"
	"github.com/provalon/quality-engine/internal/infrastructure/report"
	httpapi "github.com/provalon/quality-engine/internal/interfaces/http"
	"github.com/provalon/quality-engine/pkg/database"
	"github.com/provalon/quality-engine/pkg/logging"
)

func main() {
	// Local overrides from .env, if present
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting quality status engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Persistence layer
	engineDB := sqlite.NewDB(db.DB, logger)
	statusRepo := repository.NewEntityStatusRepository(engineDB, logger)
	historyRepo := repository.NewHistoryRepository(engineDB, logger)
	inspectionRepo := repository.NewInspectionRepository(engineDB, logger)
	userRepo := repository.NewUserRepository(engineDB, logger)
	sequenceRepo := repository.NewSequenceRepository(engineDB, logger)
	ncrRepo := repository.NewNCRRepository(engineDB, logger)

	// Application services
	kvLogger := logging.NewSugared(logger)
	statusService := service.NewStatusService(statusRepo, historyRepo, inspectionRepo, userRepo, engineDB, kvLogger)
	numberingService := service.NewNumberingService(sequenceRepo, kvLogger)
	ncrService := service.NewNCRService(ncrRepo, historyRepo, inspectionRepo, userRepo, numberingService, engineDB, kvLogger)
	permissionService := service.NewPermissionService(statusRepo, ncrRepo, userRepo, kvLogger)
	reportService := service.NewReportService(historyRepo, ncrRepo, report.NewExcelWriter(logger), cfg.Report.FetchLimit, kvLogger)

	// HTTP adapter
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, statusService, ncrService, permissionService, reportService, kvLogger)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
