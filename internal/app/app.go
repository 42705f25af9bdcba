package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pulsato/pulsato-server/internal/api"
	"github.com/pulsato/pulsato-server/internal/config"
	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/mailer"
	"github.com/pulsato/pulsato-server/internal/repository"
	"github.com/pulsato/pulsato-server/internal/service"
	"github.com/pulsato/pulsato-server/pkg/cache"
	dbbuilder "github.com/pulsato/pulsato-server/pkg/database"
	"github.com/pulsato/pulsato-server/pkg/httpserver"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	httpServer *httpserver.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	if err := repository.InitSchema(ctx, dbPool); err != nil {
		return nil, fmt.Errorf("schema init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	var cacheClient *cache.Cache
	if cfg.CacheEnabled {
		cacheClient, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
		)
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	var keys convai.KeyProvider
	if cfg.ConvaiKeyURL != "" {
		keys = convai.NewFunctionKeyProvider(cfg.ConvaiKeyURL, cfg.ConvaiKeyToken)
	} else {
		keys = convai.StaticKeyProvider(cfg.ConvaiAPIKey)
	}
	convaiClient := convai.NewClient(cfg.ConvaiBaseURL, keys)
	watcher := convai.NewWatcher(convaiClient, cfg.ConvaiPollEvery, logger)

	mailClient := mailer.NewClient(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	analysisRepo := repository.NewAnalysisRepository(dbPool)
	companyRepo := repository.NewCompanyRepository(dbPool)

	tokens, err := api.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("token manager init failed: %w", err)
	}

	authService := service.NewAuthService(companyRepo, tokens.Sign, logger)
	assessmentService := service.NewAssessmentService(convaiClient, watcher, analysisRepo, companyRepo, logger)
	reportService := service.NewReportService(analysisRepo, companyRepo, logger)
	companyService := service.NewCompanyService(companyRepo, mailClient, cfg.AppURL, logger)

	var cacher api.Cacher
	if cacheClient != nil {
		cacher = cacheClient
	}
	handlers := api.NewHandlers(authService, assessmentService, reportService, companyService, cacher, logger, cfg.ReportCacheTTL)

	httpServer, err := httpserver.New(
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithLogger(logger),
		httpserver.WithHandler(handlers.Router(tokens)),
		httpserver.WithLogging(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http server: %w", err)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		httpServer: httpServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.httpServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", zap.Error(err))
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")

	_ = a.logger.Sync()
	return nil
}
