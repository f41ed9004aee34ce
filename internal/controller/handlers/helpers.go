package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// reply отправляет текст в чат, ошибка доставки только логируется
func (h *Handlers) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Warn("Failed to send reply",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// replyError переводит ошибку ядра в сообщение для пользователя
func (h *Handlers) replyError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	var text string
	switch {
	case errors.Is(err, service.ErrBlacklisted):
		text = "🚫 К сожалению, запись для вас недоступна."
	case errors.Is(err, service.ErrSlotGone):
		text = "😔 Это окно уже занято. Посмотрите список: /slots"
	case errors.Is(err, service.ErrDuplicateAppointment):
		text = "⚠️ У вас уже есть активная заявка на это окно."
	case errors.Is(err, service.ErrSlotNotFound):
		text = "❌ Окно не найдено."
	case errors.Is(err, service.ErrAppointmentNotFound):
		text = "❌ Заявка не найдена."
	case errors.Is(err, service.ErrProcedureNotFound):
		text = "❌ Услуга не найдена."
	case errors.Is(err, service.ErrInvalidTransition):
		text = "⚠️ Действие недоступно для текущего статуса заявки."
	case errors.Is(err, service.ErrInvalidInterval):
		text = "⚠️ Конец окна должен быть позже начала."
	case errors.Is(err, service.ErrStartInPast):
		text = "⚠️ Окно должно начинаться в будущем."
	case errors.Is(err, service.ErrSlotOverlap):
		text = "⚠️ Окно пересекается с уже существующим."
	default:
		h.logger.Error("Command failed", zap.Error(err))
		text = "❌ Произошла ошибка. Попробуйте позже."
	}

	h.reply(ctx, b, chatID, text)
}

// commandID извлекает id из команды вида /approve_12
func commandID(text, prefix string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(text), prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse command id: %w", err)
	}
	return id, nil
}

// formatSlots строит список окон для сообщения
func formatSlots(slots []*model.Slot) string {
	if len(slots) == 0 {
		return "Свободных окон пока нет."
	}

	var b strings.Builder
	b.WriteString("Свободные окна:\n")
	for _, slot := range slots {
		fmt.Fprintf(&b, "• %s — /book_%d\n", slot.Label, slot.ID)
	}
	b.WriteString("\nЗапись: /book_<номер>. Если хотите именно позднее окно — /later_<номер>.")
	return b.String()
}

// formatAppointments строит очередь заявок для мастера
func formatAppointments(title string, appointments []*model.Appointment) string {
	if len(appointments) == 0 {
		return title + ": пусто."
	}

	var b strings.Builder
	b.WriteString(title + ":\n")
	for _, a := range appointments {
		fmt.Fprintf(&b, "• #%d %s — %s (%s)\n", a.ID, a.ClientName, a.SlotLabel, a.Status)
	}
	return b.String()
}
