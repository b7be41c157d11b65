package app

import (
	"encoding/json"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptomate/internal/bot"
)

// routes builds the HTTP handler: health, status, Telegram webhook and the Mini App API
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/", a.handleRoot)
	mux.HandleFunc("/telegram-webhook", a.handleWebhook)

	if a.bot != nil {
		bot.NewHTTPServer(a.bot, a.config.TelegramToken, a.config.WebhookMode).RegisterRoutes(mux)
	}

	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (a *App) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	mode := "polling"
	if a.config.WebhookMode {
		mode = "webhook"
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "CryptoMate bot is running (mode: %s)", mode)
}

// handleWebhook receives updates from Telegram in webhook mode
func (a *App) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		a.logger.Warn("Error decoding webhook update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Process update in background to respond quickly to Telegram
	if a.bot != nil {
		go a.bot.HandleWebhookUpdate(update)
	}

	w.WriteHeader(http.StatusOK)
}
