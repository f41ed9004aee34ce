package handlers

import (
	"context"
	"fmt"

	"github.com/avoronova/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот записи в салон.\n\n"+
			"Доступные команды:\n"+
			"/slots - Свободные окна\n"+
			"/procedures - Список услуг\n"+
			"/help - Справка",
		update.Message.From.FirstName,
	)

	h.reply(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := "Команды:\n" +
		"/slots - свободные окна\n" +
		"/procedures - услуги салона\n" +
		"/book_<номер> - записаться на окно\n" +
		"/later_<номер> - занять позднее окно (бот сам предложит его мастеру, когда подойдёт очередь)\n" +
		"/cancel - прервать текущий диалог"

	if h.isMaster(update.Message.Chat.ID) {
		text += "\n\nДля мастера:\n" +
			"/queue - заявки на подтверждение\n" +
			"/waiting - отложенные заявки\n" +
			"/visits - подтверждённые записи\n" +
			"/historylog - журнал визитов\n" +
			"/approve_N /reject_N /done_N /noshow_N /promote_N\n" +
			"/move_N_M - предложить перенос заявки N на окно M\n" +
			"/delrecord_N - удалить закрытую заявку\n" +
			"/addslot /delslot_N - управление окнами\n" +
			"/addproc - новая услуга\n" +
			"/block @ник /unblock @ник /blacklist - чёрный список"
	}

	h.reply(ctx, b, update.Message.Chat.ID, text)
}

// HandleSlots обрабатывает команду /slots
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	slots, err := h.slotService.List(ctx)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.reply(ctx, b, update.Message.Chat.ID, formatSlots(slots))
}

// HandleProcedures обрабатывает команду /procedures
func (h *Handlers) HandleProcedures(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	procedures, err := h.catalogService.GetActiveProcedures(ctx)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	if len(procedures) == 0 {
		h.reply(ctx, b, update.Message.Chat.ID, "Каталог услуг пока пуст.")
		return
	}

	text := "Услуги:\n"
	for _, p := range procedures {
		text += fmt.Sprintf("• %s\n", p.Name)
	}
	h.reply(ctx, b, update.Message.Chat.ID, text)
}

// HandleBookEarliest обрабатывает /book_N
func (h *Handlers) HandleBookEarliest(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleBook(ctx, b, update, "/book_", false)
}

// HandleBookLater обрабатывает /later_N: клиент сознательно берёт позднее окно
func (h *Handlers) HandleBookLater(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleBook(ctx, b, update, "/later_", true)
}

func (h *Handlers) handleBook(ctx context.Context, b *bot.Bot, update *models.Update, prefix string, simpleReserve bool) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	slotID, err := commandID(update.Message.Text, prefix)
	if err != nil {
		h.reply(ctx, b, chatID, "Не понял номер окна. Посмотрите список: /slots")
		return
	}

	from := update.Message.From
	client := service.Client{
		ID:       from.ID,
		Username: from.Username,
		Name:     displayName(from),
	}

	appointment, err := h.bookingService.Submit(ctx, client, slotID, nil, simpleReserve)
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	switch {
	case appointment.Status.IsDeferred():
		h.reply(ctx, b, chatID, fmt.Sprintf(
			"⏳ Заявка на %s принята. Окно позднее ближайшего, поэтому бот предложит её мастеру, когда подойдёт очередь.",
			appointment.SlotLabel))
	default:
		h.reply(ctx, b, chatID, fmt.Sprintf(
			"📨 Заявка на %s отправлена мастеру на подтверждение.",
			appointment.SlotLabel))
	}
}

// HandleConfirmMove обрабатывает /confirmmove_N
func (h *Handlers) HandleConfirmMove(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	id, err := commandID(update.Message.Text, "/confirmmove_")
	if err != nil {
		h.reply(ctx, b, chatID, "Не понял номер заявки.")
		return
	}

	if err := h.guardOwnAppointment(ctx, b, update, id); err != nil {
		return
	}

	if err := h.bookingService.ConfirmMove(ctx, id); err != nil {
		h.replyError(ctx, b, chatID, err)
	}
}

// HandleDeclineMove обрабатывает /declinemove_N
func (h *Handlers) HandleDeclineMove(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	id, err := commandID(update.Message.Text, "/declinemove_")
	if err != nil {
		h.reply(ctx, b, chatID, "Не понял номер заявки.")
		return
	}

	if err := h.guardOwnAppointment(ctx, b, update, id); err != nil {
		return
	}

	if err := h.bookingService.DeclineMove(ctx, id); err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.reply(ctx, b, chatID, "Хорошо, запись остаётся на прежнем времени.")
}

// HandleCancel обрабатывает команду /cancel
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.stateManager.ClearState(update.Message.Chat.ID)
	h.reply(ctx, b, update.Message.Chat.ID, "Диалог прерван.")
}

// guardOwnAppointment отвечать на предложение переноса может только сам
// клиент (или мастер)
func (h *Handlers) guardOwnAppointment(ctx context.Context, b *bot.Bot, update *models.Update, appointmentID int64) error {
	chatID := update.Message.Chat.ID
	if h.isMaster(chatID) {
		return nil
	}

	appointment, err := h.bookingService.GetByID(ctx, appointmentID)
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return err
	}
	if appointment == nil || appointment.ClientID != update.Message.From.ID {
		h.reply(ctx, b, chatID, "❌ Заявка не найдена.")
		return fmt.Errorf("appointment does not belong to client")
	}
	return nil
}

func displayName(from *models.User) string {
	name := from.FirstName
	if from.LastName != "" {
		name += " " + from.LastName
	}
	return name
}
