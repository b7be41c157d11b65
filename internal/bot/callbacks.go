package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptomate/internal/exchange"
)

// handleMethodCallback processes a payment method choice from the inline keyboard
func (b *Bot) handleMethodCallback(ctx context.Context, query *tgbotapi.CallbackQuery, leg exchange.Leg, data string) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	method, err := exchange.ParseMethod(data)
	if err != nil {
		b.logger.Warn("Invalid method in callback",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("callback_data", query.Data),
		)
		return
	}

	step := b.machine.ChooseMethod(userID, leg, method)
	b.reportStep(ctx, chatID, userID, step)
}

// handleOnlineCallback answers the location question with "online"
func (b *Bot) handleOnlineCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	step := b.machine.ChooseOnline(query.From.ID)
	b.reportStep(ctx, query.Message.Chat.ID, query.From.ID, step)
}
