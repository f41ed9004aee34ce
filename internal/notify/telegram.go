package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// TelegramNotifier доставка сообщений клиентам и мастеру через бота
type TelegramNotifier struct {
	bot         *bot.Bot
	adminChatID int64
}

func NewTelegramNotifier(botInstance *bot.Bot, adminChatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:         botInstance,
		adminChatID: adminChatID,
	}
}

// NotifyClient отправляет текст в личный чат клиента
func (n *TelegramNotifier) NotifyClient(ctx context.Context, chatID int64, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send message to client %d: %w", chatID, err)
	}
	return nil
}

// NotifyMaster отправляет текст в чат мастера
func (n *TelegramNotifier) NotifyMaster(ctx context.Context, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.adminChatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send message to master: %w", err)
	}
	return nil
}
