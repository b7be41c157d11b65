package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptomate/internal/assistant"
	"cryptomate/internal/exchange"
)

const (
	historyLimit   = 10
	popularLimit   = 10
	popularWindow  = 30 * 24 * time.Hour
	assistantLimit = 60 * time.Second
)

// handleStart shows welcome message and the main menu
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := `Welcome to CryptoMate! 💱

I help you find where to exchange crypto, bank money and cash.

💱 Exchange - find exchangers for a currency pair
📈 Prices - current crypto prices
🏆 Top exchanges - exchanges we recommend
🧠 Crypto AI - ask anything about crypto

Use /help to see all commands.`

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.sendMessage(msg)
}

// handleHelp lists the commands
func (b *Bot) handleHelp(message *tgbotapi.Message) {
	text := `Available commands:
/exchange - Find an exchanger for a currency pair
/prices - Current crypto prices
/top - Top exchanges
/history - Your recent exchange requests
/popular - Most requested pairs
/cancel - Cancel the current exchange

Send any other text to ask the crypto assistant.`

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.sendMessage(msg)
}

// handleExchangeStart opens a new exchange request
func (b *Bot) handleExchangeStart(chatID, userID int64) {
	step := b.machine.Start(userID)
	b.logger.Debug("Exchange started", zap.Int64("user_id", userID))
	b.promptStep(chatID, step)
}

// handleCancel discards the exchange in progress
func (b *Bot) handleCancel(chatID, userID int64) {
	step := b.machine.Cancel(userID)
	if !step.Cancelled {
		msg := tgbotapi.NewMessage(chatID, "Nothing to cancel.")
		msg.ReplyMarkup = mainMenuKeyboard()
		b.sendMessage(msg)
		return
	}
	b.reportStep(context.Background(), chatID, userID, step)
}

// handlePrices shows current quotes
func (b *Bot) handlePrices(ctx context.Context, chatID int64) {
	if b.prices == nil {
		b.sendText(chatID, "⚠️ Prices are not available right now.")
		return
	}

	quotes, err := b.prices.Quotes(ctx)
	if err != nil {
		b.logger.Error("Failed to fetch prices", zap.Error(err))
		b.sendText(chatID, "⚠️ Could not fetch prices. Please try again later.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📈 Current prices:\n\n")
	for _, q := range quotes {
		parts := make([]string, 0, len(b.prices.Currencies()))
		for _, cur := range b.prices.Currencies() {
			v, ok := q.Prices[cur]
			if !ok {
				parts = append(parts, "n/a "+strings.ToUpper(cur))
				continue
			}
			parts = append(parts, formatPrice(v)+" "+strings.ToUpper(cur))
		}
		sb.WriteString(fmt.Sprintf("• %s: %s\n", q.Coin.Symbol, strings.Join(parts, " · ")))
	}

	b.sendText(chatID, sb.String())
}

// handleTop shows the configured list of recommended exchanges
func (b *Bot) handleTop(chatID int64) {
	if len(b.topExchanges) == 0 {
		b.sendText(chatID, "No exchanges configured.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Top exchanges:\n\n")
	for i, name := range b.topExchanges {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, name))
	}
	b.sendText(chatID, sb.String())
}

// handleHistory shows the last completed requests of the user
func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	records, err := b.db.LastExchanges(ctx, message.From.ID, historyLimit)
	if err != nil {
		b.logger.Error("Failed to list exchange history",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
		)
		b.sendText(message.Chat.ID, fmt.Sprintf("Error: %v", err))
		return
	}

	if len(records) == 0 {
		b.sendText(message.Chat.ID, "You have no exchange requests yet. Tap 💱 Exchange to start.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🕘 Your last %d requests:\n\n", len(records)))
	for i, r := range records {
		sb.WriteString(fmt.Sprintf("%d. %s %s (%s) → %s (%s)",
			i+1, r.CreatedAt.Format("2006-01-02 15:04"), r.GiveToken, r.GiveMethod, r.GetToken, r.GetMethod))
		if r.Location != "" && r.Location != exchange.LocationOnline {
			sb.WriteString(", " + r.Location)
		}
		sb.WriteString("\n   " + r.Link + "\n")
	}

	b.sendText(message.Chat.ID, sb.String())
}

// handlePopular shows the most requested pairs of the last 30 days
func (b *Bot) handlePopular(ctx context.Context, chatID int64) {
	stats, err := b.db.TopPairs(ctx, popularLimit, time.Now().Add(-popularWindow))
	if err != nil {
		b.logger.Error("Failed to get popular pairs", zap.Error(err))
		b.sendText(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	if len(stats) == 0 {
		b.sendText(chatID, "No exchange requests in the last 30 days.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔥 Popular pairs (30 days):\n\n")
	for i, s := range stats {
		sb.WriteString(fmt.Sprintf("%d. %s → %s: %d\n", i+1, s.GiveCode, s.GetCode, s.Count))
	}
	b.sendText(chatID, sb.String())
}

// handleAssistantIntro answers the Crypto AI menu button
func (b *Bot) handleAssistantIntro(chatID int64) {
	if b.assistant == nil {
		b.sendText(chatID, "⚠️ AI is not configured yet.")
		return
	}
	b.sendText(chatID, "🧠 Ask me anything about crypto. Just type your question.")
}

// handleAssistant forwards free text outside the exchange dialog to the assistant
func (b *Bot) handleAssistant(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if b.assistant == nil {
		b.sendText(chatID, "⚠️ AI is not configured yet. Tap 💱 Exchange to find an exchanger.")
		return
	}

	question := strings.TrimSpace(message.Text)
	if question == "" {
		b.sendText(chatID, "I understand text messages only.")
		return
	}

	b.sendTyping(chatID)

	ctx, cancel := context.WithTimeout(ctx, assistantLimit)
	defer cancel()

	answer, err := b.assistant.Ask(ctx, question)
	if err != nil {
		b.logger.Error("Assistant request failed",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
		)
		if errors.Is(err, assistant.ErrEmptyAnswer) {
			b.sendText(chatID, "🤷 I have no answer to that. Try rephrasing the question.")
			return
		}
		b.sendText(chatID, "⚠️ AI is unavailable right now. Please try again later.")
		return
	}

	for _, chunk := range splitMessage(answer, maxMessageLength) {
		b.sendText(chatID, chunk)
	}
}
