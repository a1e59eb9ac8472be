package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "github.com/shenikar/incident_board/docs"
	"github.com/shenikar/incident_board/internal/config"
	v1 "github.com/shenikar/incident_board/internal/handler/http/v1"
	"github.com/shenikar/incident_board/internal/repository"
	"github.com/shenikar/incident_board/internal/seed"
	"github.com/shenikar/incident_board/internal/service"
	"github.com/shenikar/incident_board/internal/webhook"
	"github.com/shenikar/incident_board/pkg/logger"
	redisclient "github.com/shenikar/incident_board/pkg/redis"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the webhook worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx)
		},
	}
}

func runServer(ctx context.Context) error {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Загрузка стартовых данных
	board, err := seed.Load(cfg.SeedFile, time.Now())
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}
	log.WithFields(logrus.Fields{
		"incidents": len(board.Incidents),
		"units":     len(board.Units),
	}).Info("Seed loaded")

	warnUnsetConfig(cfg, log)

	// Издатель событий и воркер вебхуков работают только с Redis
	var (
		publisher webhook.Publisher = webhook.NoopPublisher{}
		worker    *webhook.Worker
	)
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		publisher = webhook.NewRedisPublisher(redisClient)
		worker = webhook.NewWorker(webhook.NewRedisQueue(redisClient), log, cfg)
	}

	credentials, err := service.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	// Инициализация репозитория, сервисов и хэндлеров
	boardRepo := repository.NewBoardRepository(board)
	dispatchService := service.NewDispatchService(boardRepo, log, publisher)
	verifier := service.NewStaticCredentialVerifier(credentials, log)
	handler := v1.NewHandler(dispatchService, verifier, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if worker != nil {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server stopped with error")
		return err
	}

	log.Info("Server gracefully stopped")
	return nil
}

// warnUnsetConfig предупреждает о настройках, без которых часть API отключена
func warnUnsetConfig(cfg *config.Config, log *logrus.Logger) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR is not set. Dispatch events will not be published.")
	}
	if len(cfg.APIKeys) == 0 {
		log.Warn("API_KEYS is not set. Assignments and notes will be rejected with 401.")
	}
}
