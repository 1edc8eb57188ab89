package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/competition-brackets/brackets"
	"github.com/Dosada05/competition-brackets/broadcast"
	"github.com/Dosada05/competition-brackets/config"
	"github.com/Dosada05/competition-brackets/db"
	_ "github.com/Dosada05/competition-brackets/docs"
	"github.com/Dosada05/competition-brackets/handlers"
	"github.com/Dosada05/competition-brackets/repositories"
	api "github.com/Dosada05/competition-brackets/routes"
	"github.com/Dosada05/competition-brackets/services"
	"github.com/Dosada05/competition-brackets/storage"
)

// @title Competition Brackets API
// @version 1.0
// @description Генерация сеток и ведение матчей соревнований.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn.DB); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Инициализация WebSocket Hub
	wsHub := broadcast.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Публикация событий: через Redis, если он настроен, иначе напрямую в hub
	var publisher broadcast.Publisher = broadcast.NewHubPublisher(wsHub)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}

		publisher = broadcast.NewRedisPublisher(rdb, broadcast.DefaultChannel)
		relay := broadcast.NewRelay(rdb, broadcast.DefaultChannel, wsHub, logger)
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("event relay stopped", slog.Any("error", err))
			}
		}()
		logger.Info("redis event relay started", slog.String("addr", cfg.RedisAddr))
	}

	// Инициализация архива сеток (Cloudflare R2), опционально
	var archiver services.BracketArchiver
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Config.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = services.NewBracketArchiver(uploader, logger)
		logger.Info("Cloudflare R2 archive initialized")
	} else {
		logger.Warn("Cloudflare R2 is not configured, replaced brackets will not be archived")
	}

	// Инициализация репозиториев
	transactor := repositories.NewTransactor(dbConn)
	competitionRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	applicationRepo := repositories.NewPostgresApplicationRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	cancelPolicy := brackets.CancelPolicy(cfg.CancelledMatchPolicy)
	resolver := services.NewParticipantResolver(competitionRepo, applicationRepo, logger)
	bracketService := services.NewBracketService(
		transactor,
		competitionRepo,
		bracketRepo,
		matchRepo,
		resultRepo,
		resolver,
		publisher,
		logger,
	)
	matchService := services.NewMatchService(
		transactor,
		bracketRepo,
		matchRepo,
		resultRepo,
		cancelPolicy,
		publisher,
		logger,
	)
	regenerationService := services.NewRegenerationService(
		transactor,
		competitionRepo,
		bracketRepo,
		matchRepo,
		resultRepo,
		resolver,
		archiver,
		services.RegenerationPolicy(cfg.RegenerationPolicy),
		cancelPolicy,
		publisher,
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	bracketHandler := handlers.NewBracketHandler(bracketService)
	matchHandler := handlers.NewMatchHandler(matchService)
	rosterHandler := handlers.NewRosterHandler(regenerationService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, cfg.AllowedOrigins, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecretKey: cfg.JWTSecretKey, AllowedOrigins: cfg.AllowedOrigins},
		bracketHandler,
		matchHandler,
		rosterHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			stop()
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	// останавливаем hub и relay
	stop()
	logger.Info("application exited")
}
