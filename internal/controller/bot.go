package controller

import (
	"context"
	"time"

	"github.com/avoronova/salon_bot/internal/controller/handlers"
	"github.com/avoronova/salon_bot/internal/controller/state"
	"github.com/avoronova/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	bookingService *service.BookingService,
	slotService *service.SlotService,
	catalogService *service.CatalogService,
	adminChatID int64,
	location *time.Location,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний диалогов
	stateManager := state.NewManager(state.DefaultTTL)

	cmdHandlers := handlers.NewHandlers(
		bookingService,
		slotService,
		catalogService,
		stateManager,
		adminChatID,
		location,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	h := c.handlers

	// Команды клиента
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/slots", bot.MatchTypeExact, h.HandleSlots)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/procedures", bot.MatchTypeExact, h.HandleProcedures)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, h.HandleCancel)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/book_", bot.MatchTypePrefix, h.HandleBookEarliest)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/later_", bot.MatchTypePrefix, h.HandleBookLater)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/confirmmove_", bot.MatchTypePrefix, h.HandleConfirmMove)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/declinemove_", bot.MatchTypePrefix, h.HandleDeclineMove)

	// Команды мастера
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/queue", bot.MatchTypeExact, h.HandleQueue)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/waiting", bot.MatchTypeExact, h.HandleWaiting)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/visits", bot.MatchTypeExact, h.HandleVisits)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/historylog", bot.MatchTypeExact, h.HandleHistoryLog)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addslot", bot.MatchTypeExact, h.HandleAddSlotStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addproc", bot.MatchTypeExact, h.HandleAddProcedureStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delslot_", bot.MatchTypePrefix, h.HandleDelSlot)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/move_", bot.MatchTypePrefix, h.HandleMove)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/approve_", bot.MatchTypePrefix, h.HandleApprove)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reject_", bot.MatchTypePrefix, h.HandleReject)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/done_", bot.MatchTypePrefix, h.HandleComplete)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/noshow_", bot.MatchTypePrefix, h.HandleNoShow)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/promote_", bot.MatchTypePrefix, h.HandlePromote)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delrecord_", bot.MatchTypePrefix, h.HandleDeleteRecord)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/block", bot.MatchTypePrefix, h.HandleBlock)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unblock", bot.MatchTypePrefix, h.HandleUnblock)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/blacklist", bot.MatchTypeExact, h.HandleBlacklist)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.HandleTextMessage)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "slots", Description: "🕐 Свободные окна"},
		{Command: "procedures", Description: "💅 Услуги салона"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
