package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptomate/internal/exchange"
	"cryptomate/internal/prices"
	"cryptomate/internal/storage"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api          *tgbotapi.BotAPI
	sender       Sender
	db           storage.Storage
	machine      *exchange.Machine
	prices       PriceSource
	assistant    Assistant
	allowedUsers map[int64]bool
	topExchanges []string
	logger       *zap.Logger
}

// Sender is the part of the Telegram API the handlers talk to
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// PriceSource provides crypto price quotes
type PriceSource interface {
	Quotes(ctx context.Context) ([]prices.Quote, error)
	Currencies() []string
}

// Assistant answers free-form questions
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Options holds the optional collaborators of the bot
type Options struct {
	// AllowedUserIDs restricts access; empty admits everyone
	AllowedUserIDs []int64
	Prices         PriceSource
	Assistant      Assistant
	TopExchanges   []string
}
