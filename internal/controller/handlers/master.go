package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleQueue обрабатывает /queue: заявки, ждущие решения мастера
func (h *Handlers) HandleQueue(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleStatusList(ctx, b, update, "Заявки на подтверждение", model.StatusPending)
}

// HandleVisits обрабатывает /visits: подтверждённые записи
func (h *Handlers) HandleVisits(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleStatusList(ctx, b, update, "Подтверждённые записи", model.StatusApproved)
}

// HandleWaiting обрабатывает /waiting: отложенные заявки обеих разновидностей
func (h *Handlers) HandleWaiting(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	chatID := update.Message.Chat.ID

	conditional, err := h.bookingService.ListByStatus(ctx, model.StatusConditional)
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}
	reserved, err := h.bookingService.ListByStatus(ctx, model.StatusReservedLater)
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.reply(ctx, b, chatID, formatAppointments("Отложенные заявки", append(conditional, reserved...)))
}

// HandleHistoryLog обрабатывает /historylog
func (h *Handlers) HandleHistoryLog(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	chatID := update.Message.Chat.ID
	entries, err := h.bookingService.History(ctx, 30)
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	if len(entries) == 0 {
		h.reply(ctx, b, chatID, "Журнал визитов пуст.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Журнал визитов:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "• %s — %s, %s (%s)\n", e.DateLabel, e.ClientName, e.ProcedureLabel, e.Outcome)
	}
	h.reply(ctx, b, chatID, sb.String())
}

// HandleTransition обрабатывает команды переходов вида /approve_N
func (h *Handlers) HandleTransition(ctx context.Context, b *bot.Bot, update *models.Update, prefix string, transition func(ctx context.Context, id int64) error, doneText string) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	chatID := update.Message.Chat.ID
	id, err := commandID(update.Message.Text, prefix)
	if err != nil {
		h.reply(ctx, b, chatID, "Не понял номер заявки.")
		return
	}

	if err := transition(ctx, id); err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf(doneText, id))
}

// HandleApprove обрабатывает /approve_N
func (h *Handlers) HandleApprove(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.HandleTransition(ctx, b, update, "/approve_", h.bookingService.Approve, "✅ Заявка #%d подтверждена.")
}

// HandleReject обрабатывает /reject_N
func (h *Handlers) HandleReject(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.HandleTransition(ctx, b, update, "/reject_", h.bookingService.Reject, "❌ Заявка #%d отклонена.")
}

// HandleComplete обрабатывает /done_N
func (h *Handlers) HandleComplete(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.HandleTransition(ctx, b, update, "/done_", h.bookingService.Complete, "💅 Визит #%d закрыт.")
}

// HandleNoShow обрабатывает /noshow_N
func (h *Handlers) HandleNoShow(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.HandleTransition(ctx, b, update, "/noshow_", h.bookingService.MarkNoShow, "😔 Неявка по заявке #%d записана.")
}

// HandlePromote обрабатывает /promote_N
func (h *Handlers) HandlePromote(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.HandleTransition(ctx, b, update, "/promote_", h.bookingService.ForcePromote, "⏫ Заявка #%d продвинута.")
}

// HandleDeleteRecord обрабатывает /delrecord_N
func (h *Handlers) HandleDeleteRecord(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.HandleTransition(ctx, b, update, "/delrecord_", h.bookingService.DeleteRecord, "🗑 Заявка #%d удалена.")
}

// HandleMove обрабатывает /move_N_M: предложить перенос заявки N на окно M
func (h *Handlers) HandleMove(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	chatID := update.Message.Chat.ID
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(update.Message.Text), "/move_"), "_")
	if len(parts) != 2 {
		h.reply(ctx, b, chatID, "Формат: /move_<заявка>_<окно>")
		return
	}

	appointmentID, err1 := strconv.ParseInt(parts[0], 10, 64)
	slotID, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		h.reply(ctx, b, chatID, "Формат: /move_<заявка>_<окно>")
		return
	}

	if err := h.bookingService.ProposeMove(ctx, appointmentID, slotID); err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf("🔁 Перенос заявки #%d предложен клиенту.", appointmentID))
}

// HandleDelSlot обрабатывает /delslot_N
func (h *Handlers) HandleDelSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	chatID := update.Message.Chat.ID
	id, err := commandID(update.Message.Text, "/delslot_")
	if err != nil {
		h.reply(ctx, b, chatID, "Не понял номер окна.")
		return
	}

	if err := h.slotService.Delete(ctx, id); err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf("🗑 Окно %d удалено.", id))
}

// HandleBlock обрабатывает /block @ник
func (h *Handlers) HandleBlock(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleBlacklistChange(ctx, b, update, "/block", h.catalogService.BlockClient, "🚫 %s добавлен в чёрный список.")
}

// HandleUnblock обрабатывает /unblock @ник
func (h *Handlers) HandleUnblock(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleBlacklistChange(ctx, b, update, "/unblock", h.catalogService.UnblockClient, "✅ %s убран из чёрного списка.")
}

// HandleBlacklist обрабатывает /blacklist
func (h *Handlers) HandleBlacklist(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	chatID := update.Message.Chat.ID
	entries, err := h.catalogService.Blacklist(ctx)
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	if len(entries) == 0 {
		h.reply(ctx, b, chatID, "Чёрный список пуст.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Чёрный список:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "• @%s\n", e.Username)
	}
	h.reply(ctx, b, chatID, sb.String())
}

func (h *Handlers) handleStatusList(ctx context.Context, b *bot.Bot, update *models.Update, title string, status model.AppointmentStatus) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	appointments, err := h.bookingService.ListByStatus(ctx, status)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.reply(ctx, b, update.Message.Chat.ID, formatAppointments(title, appointments))
}

func (h *Handlers) handleBlacklistChange(ctx context.Context, b *bot.Bot, update *models.Update, cmd string, change func(ctx context.Context, username string) error, doneText string) {
	if update.Message == nil || !h.isMaster(update.Message.Chat.ID) {
		return
	}

	chatID := update.Message.Chat.ID
	username := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, cmd))
	if username == "" {
		h.reply(ctx, b, chatID, fmt.Sprintf("Формат: %s @ник", cmd))
		return
	}

	if err := change(ctx, username); err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf(doneText, username))
}
