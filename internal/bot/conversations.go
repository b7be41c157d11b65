package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptomate/internal/exchange"
	"cryptomate/internal/models"
)

// handleConversation feeds free text into the exchange dialog
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message) {
	step := b.machine.HandleText(message.From.ID, message.Text)
	b.reportStep(ctx, message.Chat.ID, message.From.ID, step)
}

// reportStep tells the user what happened and what comes next
func (b *Bot) reportStep(ctx context.Context, chatID, userID int64, step exchange.Step) {
	switch {
	case step.Cancelled:
		msg := tgbotapi.NewMessage(chatID, "❌ Exchange cancelled.")
		msg.ReplyMarkup = mainMenuKeyboard()
		b.sendMessage(msg)

	case step.Done():
		b.sendResult(ctx, chatID, userID, step)

	case errors.Is(step.Err, exchange.ErrUnresolved):
		b.sendUnresolved(chatID, step.Err)

	case errors.Is(step.Err, exchange.ErrNoConversation):
		b.sendText(chatID, "No exchange in progress. Tap 💱 Exchange to start.")

	case errors.Is(step.Err, exchange.ErrMalformedInput):
		if step.State == exchange.StateAwaitingPair {
			b.sendText(chatID, "⚠️ I need two currencies, for example: UAH USDT")
		} else {
			b.sendText(chatID, "⚠️ Please send a city name.")
		}
		b.promptStep(chatID, step)

	case errors.Is(step.Err, exchange.ErrUnexpectedInput):
		b.sendText(chatID, "⚠️ Please use the buttons below.")
		b.promptStep(chatID, step)

	default:
		b.promptStep(chatID, step)
	}
}

// promptStep asks the question of the current dialog state
func (b *Bot) promptStep(chatID int64, step exchange.Step) {
	var msg tgbotapi.MessageConfig

	switch step.State {
	case exchange.StateAwaitingPair:
		examples := b.machine.Composer().Catalog().Examples(2)
		msg = tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"💱 What do you want to exchange?\n\nSend two currencies: what you give and what you get.\nFor example: UAH USDT\n\nKnown: %s …",
			strings.Join(examples, ", ")))
		msg.ReplyMarkup = cancelKeyboard()

	case exchange.StateAwaitingGiveMethod:
		msg = tgbotapi.NewMessage(chatID, fmt.Sprintf("How will you pay %s?", step.Request.GiveToken))
		msg.ReplyMarkup = methodKeyboard(exchange.LegGive)

	case exchange.StateAwaitingGetMethod:
		msg = tgbotapi.NewMessage(chatID, fmt.Sprintf("How do you want to receive %s?", step.Request.GetToken))
		msg.ReplyMarkup = methodKeyboard(exchange.LegGet)

	case exchange.StateAwaitingLocation:
		msg = tgbotapi.NewMessage(chatID, "📍 Which city are you in? Send the city name to find cash exchangers nearby.")
		msg.ReplyMarkup = locationKeyboard()

	default:
		return
	}

	b.sendMessage(msg)
}

// sendResult shows the composed links and logs the request
func (b *Bot) sendResult(ctx context.Context, chatID, userID int64, step exchange.Step) {
	reply := step.Reply

	var sb strings.Builder
	sb.WriteString("✅ " + reply.Summary + "\n\n")
	if reply.Generic {
		sb.WriteString("Both sides are the same currency, so here is the full list of exchangers.\n")
	} else {
		sb.WriteString("Compare exchanger rates for this pair:\n")
	}
	sb.WriteString(reply.PrimaryURL + "\n\n")
	if reply.Online {
		sb.WriteString("🤝 Or trade peer-to-peer:\n")
	} else {
		sb.WriteString(fmt.Sprintf("📍 Cash exchangers in %s:\n", step.Request.Location))
	}
	sb.WriteString(reply.SecondaryURL)

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = resultKeyboard(reply)
	msg.DisableWebPagePreview = true
	b.sendMessage(msg)

	record := models.ExchangeRecord{
		UserID:     userID,
		GiveToken:  step.Request.GiveToken,
		GetToken:   step.Request.GetToken,
		GiveMethod: step.Request.GiveMethod.String(),
		GetMethod:  step.Request.GetMethod.String(),
		GiveCode:   reply.GiveCode,
		GetCode:    reply.GetCode,
		Location:   step.Request.Location,
		Link:       reply.PrimaryURL,
	}
	if err := b.db.SaveExchange(ctx, record); err != nil {
		b.logger.Error("Failed to save exchange request",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return
	}

	b.logger.Info("Exchange request completed",
		zap.Int64("user_id", userID),
		zap.String("give", reply.GiveCode),
		zap.String("get", reply.GetCode),
		zap.Bool("online", reply.Online),
	)
}

// sendUnresolved explains which currency could not be resolved
func (b *Bot) sendUnresolved(chatID int64, err error) {
	text := "🤷 I couldn't recognize one of the currencies."

	var unresolved *exchange.UnresolvedError
	if errors.As(err, &unresolved) {
		text = fmt.Sprintf("🤷 I couldn't use %q: %s.", unresolved.Token, unresolved.Reason)
	}

	examples := b.machine.Composer().Catalog().Examples(3)
	text += fmt.Sprintf("\n\nTry tickers or names such as %s.\nTap 💱 Exchange to start over.", strings.Join(examples, ", "))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.sendMessage(msg)
}
