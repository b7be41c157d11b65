package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage",
				zap.Any("panic", r),
				zap.Int64("user_id", message.From.ID),
			)
			b.sendText(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if isMenuButton(text) {
		// Menu buttons interrupt an unfinished exchange like commands do
		b.dropConversation(userID)
		b.handleMenuButton(ctx, message, text)
		return
	}

	if b.machine.InProgress(userID) {
		b.handleConversation(ctx, message)
		return
	}

	b.handleAssistant(ctx, message)
}

// handleCommand routes slash commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	switch command {
	case "exchange":
		b.handleExchangeStart(message.Chat.ID, message.From.ID)
		return
	case "cancel":
		b.handleCancel(message.Chat.ID, message.From.ID)
		return
	}

	// Any other command interrupts an ongoing exchange
	b.dropConversation(message.From.ID)

	switch command {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "prices":
		b.handlePrices(ctx, message.Chat.ID)
	case "top":
		b.handleTop(message.Chat.ID)
	case "history":
		b.handleHistory(ctx, message)
	case "popular":
		b.handlePopular(ctx, message.Chat.ID)
	default:
		b.sendText(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}

// handleMenuButton routes taps on the persistent reply keyboard
func (b *Bot) handleMenuButton(ctx context.Context, message *tgbotapi.Message, text string) {
	switch text {
	case buttonExchange:
		b.handleExchangeStart(message.Chat.ID, message.From.ID)
	case buttonPrices:
		b.handlePrices(ctx, message.Chat.ID)
	case buttonTop:
		b.handleTop(message.Chat.ID)
	case buttonAssistant:
		b.handleAssistantIntro(message.Chat.ID)
	}
}

// dropConversation silently discards an unfinished exchange
func (b *Bot) dropConversation(userID int64) {
	if step := b.machine.Cancel(userID); step.Cancelled {
		b.logger.Debug("Exchange interrupted", zap.Int64("user_id", userID))
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery",
				zap.Any("panic", r),
				zap.String("callback_data", query.Data),
			)
		}
	}()

	ctx := context.Background()

	// Answer the callback query to remove loading state
	if b.sender != nil {
		if _, err := b.sender.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			b.logger.Debug("Failed to answer callback query", zap.Error(err))
		}
	}

	if query.Message == nil {
		return
	}

	// Handle callback based on prefix
	data := query.Data
	switch {
	case strings.HasPrefix(data, callbackGiveMethod):
		b.handleMethodCallback(ctx, query, legFromCallback(callbackGiveMethod), strings.TrimPrefix(data, callbackGiveMethod))
	case strings.HasPrefix(data, callbackGetMethod):
		b.handleMethodCallback(ctx, query, legFromCallback(callbackGetMethod), strings.TrimPrefix(data, callbackGetMethod))
	case data == callbackLocationOnline:
		b.handleOnlineCallback(ctx, query)
	case data == callbackCancel:
		b.handleCancel(query.Message.Chat.ID, query.From.ID)
	default:
		b.logger.Debug("Unknown callback data", zap.String("callback_data", data))
	}
}
