package handlers

import (
	"time"

	"github.com/avoronova/salon_bot/internal/controller/state"
	"github.com/avoronova/salon_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers обработчики команд бота
type Handlers struct {
	bookingService *service.BookingService
	slotService    *service.SlotService
	catalogService *service.CatalogService
	stateManager   *state.Manager
	adminChatID    int64
	location       *time.Location
	logger         *zap.Logger
}

func NewHandlers(
	bookingService *service.BookingService,
	slotService *service.SlotService,
	catalogService *service.CatalogService,
	stateManager *state.Manager,
	adminChatID int64,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		bookingService: bookingService,
		slotService:    slotService,
		catalogService: catalogService,
		stateManager:   stateManager,
		adminChatID:    adminChatID,
		location:       location,
		logger:         logger,
	}
}

// isMaster команды управления доступны только из чата мастера
func (h *Handlers) isMaster(chatID int64) bool {
	return chatID == h.adminChatID
}
