package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cryptomate/internal/exchange"
)

// Main menu buttons
const (
	buttonExchange  = "💱 Exchange"
	buttonPrices    = "📈 Prices"
	buttonTop       = "🏆 Top exchanges"
	buttonAssistant = "🧠 Crypto AI"
)

// Callback data
const (
	callbackGiveMethod     = "give_method:"
	callbackGetMethod      = "get_method:"
	callbackLocationOnline = "location:online"
	callbackCancel         = "exchange:cancel"
)

func isMenuButton(text string) bool {
	switch text {
	case buttonExchange, buttonPrices, buttonTop, buttonAssistant:
		return true
	}
	return false
}

func legFromCallback(prefix string) exchange.Leg {
	if prefix == callbackGetMethod {
		return exchange.LegGet
	}
	return exchange.LegGive
}

// mainMenuKeyboard is the persistent reply keyboard
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonExchange),
			tgbotapi.NewKeyboardButton(buttonPrices),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonTop),
			tgbotapi.NewKeyboardButton(buttonAssistant),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// methodKeyboard offers the payment methods for one leg
func methodKeyboard(leg exchange.Leg) tgbotapi.InlineKeyboardMarkup {
	prefix := callbackGiveMethod
	if leg == exchange.LegGet {
		prefix = callbackGetMethod
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Card", prefix+exchange.MethodCard.String()),
			tgbotapi.NewInlineKeyboardButtonData("💵 Cash", prefix+exchange.MethodCash.String()),
			tgbotapi.NewInlineKeyboardButtonData("🪙 Crypto", prefix+exchange.MethodCrypto.String()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel),
		),
	)
}

// locationKeyboard lets the user skip the city question
func locationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌐 Online", callbackLocationOnline),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel),
		),
	)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel),
		),
	)
}

// resultKeyboard carries the composed links as URL buttons
func resultKeyboard(reply *exchange.ComposedReply) tgbotapi.InlineKeyboardMarkup {
	secondary := "📍 Exchangers on the map"
	if reply.Online {
		secondary = "🤝 P2P market"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Compare rates", reply.PrimaryURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(secondary, reply.SecondaryURL),
		),
	)
}
