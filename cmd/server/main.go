package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/dispatcher"
	"github.com/Obsidian-Corp/Audit-sub005/internal/application/service"
	"github.com/Obsidian-Corp/Audit-sub005/internal/config"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/event"
	"github.com/Obsidian-Corp/Audit-sub005/internal/infrastructure/persistence/repository"
	"github.com/Obsidian-Corp/Audit-sub005/internal/infrastructure/persistence/sqlite"
	httpiface "github.com/Obsidian-Corp/Audit-sub005/internal/interfaces/http"
	"github.com/Obsidian-Corp/Audit-sub005/pkg/database"
	"github.com/Obsidian-Corp/Audit-sub005/pkg/utils"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = gotenv.Load()

	configPath := os.Getenv("AUDIT_CONFIG")
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

	logger.Info("Starting engagement workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
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

	kvLogger := utils.NewKVLogger(logger)

	// Repositories and the context-scoped transaction manager
	txManager := sqlite.NewDB(db.DB, logger)
	engagementRepo := repository.NewEngagementRepository(db.DB, logger)
	workpaperRepo := repository.NewWorkpaperRepository(db.DB, logger)
	signoffRepo := repository.NewSignoffRepository(db.DB, logger)
	logRepo := repository.NewTransitionLogRepository(db.DB, logger)

	// Event dispatcher with an audit listener for lifecycle changes
	eventDispatcher := dispatcher.NewDispatcher(dispatcher.WithLogger(kvLogger))
	defer eventDispatcher.Close()

	eventDispatcher.SubscribeNamed(event.TypeStateChanged, "state-change-log",
		func(ctx context.Context, evt *event.Event) error {
			logger.Info("Engagement state changed",
				zap.Int64("engagement_id", evt.EngagementID),
				zap.String("from", evt.GetPayloadString("from_state")),
				zap.String("to", evt.GetPayloadString("to_state")),
				zap.String("performed_by", evt.GetPayloadString("performed_by")),
			)
			return nil
		})
	eventDispatcher.SubscribeNamed(event.TypeWorkpaperLocked, "lock-log",
		func(ctx context.Context, evt *event.Event) error {
			logger.Info("Workpaper locked",
				zap.Int64("engagement_id", evt.EngagementID),
				zap.Int64("workpaper_id", evt.WorkpaperID),
				zap.String("locked_by", evt.GetPayloadString("locked_by")),
			)
			return nil
		})

	// Application services
	engagementService := service.NewEngagementService(engagementRepo, eventDispatcher, kvLogger)
	workflowService := service.NewWorkflowService(engagementRepo, workpaperRepo, logRepo, eventDispatcher, kvLogger)
	signoffService := service.NewSignoffService(workpaperRepo, signoffRepo, txManager, eventDispatcher, kvLogger)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engagementService, workflowService, signoffService, kvLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
