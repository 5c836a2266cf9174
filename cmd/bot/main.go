package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"consultation-bot/internal/app"
	"consultation-bot/internal/config"
	"consultation-bot/internal/controller"
	"consultation-bot/internal/controller/handlers"
	"consultation-bot/internal/lock"
	"consultation-bot/internal/repository"
	"consultation-bot/internal/server"
	"consultation-bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting consultation bot",
		zap.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// База данных
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Миграции
	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	consultationRepo := repository.NewConsultationRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	todoRepo := repository.NewTodoRepository(pool)
	adminRepo := repository.NewAdminUserRepository(pool)

	// Telegram-бот
	botInstance, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	messenger := controller.NewMessenger(botInstance)

	// Сервисы
	locks := lock.NewKeyedMutex()
	consultationService := service.NewConsultationService(consultationRepo, registrationRepo, locks, logger)
	registrationService := service.NewRegistrationService(
		consultationRepo, registrationRepo, subscriptionRepo, consultationService, locks, logger)
	notificationService := service.NewNotificationService(
		messenger, subscriptionRepo, registrationRepo, userRepo, logger)
	userService := service.NewUserService(userRepo, logger)
	todoService := service.NewTodoService(todoRepo, userRepo, messenger, logger)
	adminService := service.NewAdminService(adminRepo, userRepo, notificationService, cfg.JWTSecret, logger)

	// Контроллер бота
	botHandlers := handlers.NewHandlers(
		userService, consultationService, registrationService,
		notificationService, todoService, logger)
	botController := controller.NewBotController(botInstance, botHandlers, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register bot handlers", zap.Error(err))
	}

	// Фоновые задачи
	scheduler := app.NewScheduler(consultationService, todoService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Административный API
	adminServer := server.New(cfg.AdminAddr, adminService, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		botController.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		return adminServer.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return adminServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Shutdown with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}
