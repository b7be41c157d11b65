package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptomate/internal/exchange"
	"cryptomate/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, db storage.Storage, machine *exchange.Machine, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	b := newBot(api, db, machine, opts, logger)
	b.api = api
	return b, nil
}

// newBot wires a bot around any Sender; tests pass a recording fake
func newBot(sender Sender, db storage.Storage, machine *exchange.Machine, opts Options, logger *zap.Logger) *Bot {
	allowedUsers := make(map[int64]bool)
	for _, id := range opts.AllowedUserIDs {
		allowedUsers[id] = true
	}

	return &Bot{
		sender:       sender,
		db:           db,
		machine:      machine,
		prices:       opts.Prices,
		assistant:    opts.Assistant,
		allowedUsers: allowedUsers,
		topExchanges: opts.TopExchanges,
		logger:       logger,
	}
}

// GetAPI returns the bot API
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// isAllowed reports whether a user may talk to the bot
func (b *Bot) isAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || b.allowedUsers[userID]
}
