package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronova/salon_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const slotTimeLayout = "02.01.2006 15:04"

// HandleAddSlotStart начинает диалог создания окна
func (h *Handlers) HandleAddSlotStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	h.stateManager.SetState(update.Message.Chat.ID, state.StateAddSlotStart)
	h.reply(ctx, b, update.Message.Chat.ID,
		"Введите начало окна в формате 02.01.2006 15:04")
}

// HandleAddProcedureStart начинает диалог создания услуги
func (h *Handlers) HandleAddProcedureStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	h.stateManager.SetState(update.Message.Chat.ID, state.StateAddProcedureName)
	h.reply(ctx, b, update.Message.Chat.ID, "Введите название услуги")
}

// HandleTextMessage обрабатывает текст в активном диалоге
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text

	switch h.stateManager.GetState(chatID) {
	case state.StateAddSlotStart:
		h.handleAddSlotStartInput(ctx, b, chatID, text)
	case state.StateAddSlotEnd:
		h.handleAddSlotEndInput(ctx, b, chatID, text)
	case state.StateAddProcedureName:
		h.handleAddProcedureNameInput(ctx, b, chatID, text)
	}
}

func (h *Handlers) handleAddSlotStartInput(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	start, err := time.ParseInLocation(slotTimeLayout, text, h.location)
	if err != nil {
		h.reply(ctx, b, chatID, "Не понял дату. Формат: 02.01.2006 15:04")
		return
	}

	h.stateManager.SetData(chatID, "slot_start", start)
	h.stateManager.SetState(chatID, state.StateAddSlotEnd)
	h.reply(ctx, b, chatID, "Теперь введите конец окна в том же формате")
}

func (h *Handlers) handleAddSlotEndInput(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	end, err := time.ParseInLocation(slotTimeLayout, text, h.location)
	if err != nil {
		h.reply(ctx, b, chatID, "Не понял дату. Формат: 02.01.2006 15:04")
		return
	}

	raw, ok := h.stateManager.GetData(chatID, "slot_start")
	if !ok {
		// Диалог истёк по TTL - начинаем заново
		h.stateManager.ClearState(chatID)
		h.reply(ctx, b, chatID, "Диалог устарел, начните заново: /addslot")
		return
	}
	start := raw.(time.Time)

	slot, err := h.slotService.Create(ctx, "", start, end)
	if err != nil {
		h.stateManager.ClearState(chatID)
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.stateManager.ClearState(chatID)
	h.reply(ctx, b, chatID, fmt.Sprintf("✅ Окно %s создано (номер %d).", slot.Label, slot.ID))
}

func (h *Handlers) handleAddProcedureNameInput(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	procedure, err := h.catalogService.CreateProcedure(ctx, text)
	if err != nil {
		h.stateManager.ClearState(chatID)
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.stateManager.ClearState(chatID)
	h.reply(ctx, b, chatID, fmt.Sprintf("✅ Услуга «%s» добавлена.", procedure.Name))
}
