package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/avoronova/salon_bot/internal/app"
	"github.com/avoronova/salon_bot/internal/config"
	"github.com/avoronova/salon_bot/internal/controller"
	"github.com/avoronova/salon_bot/internal/notify"
	"github.com/avoronova/salon_bot/internal/repository"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"github.com/avoronova/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting salon bot",
		zap.String("environment", cfg.Environment),
		zap.String("timezone", cfg.Timezone))

	location, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// База данных
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	// Миграции
	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории
	txManager := base.NewTxManager(pool)
	slotRepo := repository.NewSlotRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	procedureRepo := repository.NewProcedureRepository(pool)
	blacklistRepo := repository.NewBlacklistRepository(pool)
	patternRepo := repository.NewPatternRepository(pool)

	// Телеграм
	botInstance, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	notifier := notify.NewTelegramNotifier(botInstance, cfg.AdminChatID)

	// Сервисы
	bookingService := service.NewBookingService(
		txManager,
		slotRepo,
		appointmentRepo,
		historyRepo,
		blacklistRepo,
		procedureRepo,
		notifier,
		logger,
	)
	slotService := service.NewSlotService(slotRepo, patternRepo, location, logger)
	catalogService := service.NewCatalogService(procedureRepo, blacklistRepo, logger)
	promotionService := service.NewPromotionService(
		bookingService,
		slotRepo,
		appointmentRepo,
		cfg.PromotionThreshold,
		cfg.ReserveWindow,
		logger,
	)
	reminderService := service.NewReminderService(
		appointmentRepo,
		notifier,
		location,
		cfg.EveningReminderHour,
		logger,
	)

	// Фоновые задачи
	scheduler := app.NewScheduler(promotionService, reminderService, slotService, cfg.SchedulerTick, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Контроллер
	botController := controller.NewBotController(
		botInstance,
		bookingService,
		slotService,
		catalogService,
		cfg.AdminChatID,
		location,
		logger,
	)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Salon bot stopped")
}
