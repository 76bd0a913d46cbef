package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/nimbuserp/approval-engine/internal/application/service"
	"github.com/nimbuserp/approval-engine/internal/config"
	"github.com/nimbuserp/approval-engine/internal/infrastructure/cache"
	"github.com/nimbuserp/approval-engine/internal/infrastructure/persistence/repository"
	"github.com/nimbuserp/approval-engine/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/nimbuserp/approval-engine/internal/interfaces/http"
	"github.com/nimbuserp/approval-engine/pkg/database"
	"github.com/nimbuserp/approval-engine/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting approval engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port),
		zap.String("fallback_policy", cfg.Workflow.FallbackPolicy))

	sqlDB, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer sqlDB.Close()

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	db := sqlite.NewDB(sqlDB, logger)

	// Repositories
	workflowRepo := repository.NewWorkflowRepository(db, logger)
	documentRepo := repository.NewDocumentRepository(db, logger)
	instanceRepo := repository.NewInstanceRepository(db, logger)
	actionRepo := repository.NewActionRepository(db, logger)

	definitionCache := cache.NewDefinitionCache(workflowRepo, cfg.Workflow.CacheTTL, logger)

	// Services
	svcLogger := sugaredLogger{logger.Sugar()}
	workflowService := service.NewWorkflowService(workflowRepo, definitionCache, svcLogger)
	documentService := service.NewDocumentService(documentRepo, actionRepo, db, svcLogger)
	submissionService := service.NewSubmissionService(
		documentRepo, instanceRepo, actionRepo, definitionCache, db,
		cfg.Workflow.FallbackPolicy, svcLogger)
	approvalService := service.NewApprovalService(
		instanceRepo, documentRepo, workflowRepo, actionRepo, db, svcLogger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, workflowService, documentService, submissionService, approvalService, svcLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}

// sugaredLogger adapts zap's sugared logger to the keysAndValues logging
// interfaces the service and http layers expect.
type sugaredLogger struct {
	s *zap.SugaredLogger
}

func (l sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l sugaredLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}

func (l sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
