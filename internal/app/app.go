package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cryptomate/internal/assistant"
	"cryptomate/internal/bot"
	"cryptomate/internal/config"
	"cryptomate/internal/exchange"
	"cryptomate/internal/logger"
	"cryptomate/internal/prices"
	"cryptomate/internal/storage"
	"cryptomate/internal/storage/ch"
	"cryptomate/internal/storage/stubs"
)

// App represents the application
type App struct {
	config  *config.Config
	logger  *zap.Logger
	db      storage.Storage
	machine *exchange.Machine
	bot     *bot.Bot
	server  *http.Server

	// stops background workers such as the keep-alive pinger
	cancel context.CancelFunc
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: zapLogger}

	zapLogger.Info("Starting CryptoMate bot...")

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initExchange(); err != nil {
		return nil, err
	}

	if err := app.initBot(); err != nil {
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

// initDatabase initializes the database connection
func (a *App) initDatabase() error {
	var db storage.Storage
	if a.config.UseMockDB {
		a.logger.Info("Using mock database")
		db = stubs.NewMockDB()
	} else {
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", a.config.ClickHouseHost),
			zap.Int("port", a.config.ClickHousePort),
			zap.String("database", a.config.ClickHouseDatabase),
			zap.String("user", a.config.ClickHouseUser),
			zap.Bool("tls", a.config.ClickHouseUseTLS),
		)
		clickhouseDB, err := ch.NewClickHouseDB(
			a.config.ClickHouseHost,
			a.config.ClickHousePort,
			a.config.ClickHouseDatabase,
			a.config.ClickHouseUser,
			a.config.ClickHousePassword,
			a.config.ClickHouseUseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		db = clickhouseDB
	}

	ctx := context.Background()
	if err := db.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.logger.Info("Database initialized successfully")

	a.db = db
	return nil
}

// initExchange loads the asset catalog and builds the dialog machine
func (a *App) initExchange() error {
	var (
		catalog *exchange.Catalog
		err     error
	)
	if a.config.CatalogPath != "" {
		catalog, err = exchange.LoadCatalogFile(a.config.CatalogPath)
	} else {
		catalog, err = exchange.DefaultCatalog()
	}
	if err != nil {
		return fmt.Errorf("failed to load asset catalog: %w", err)
	}

	a.logger.Info("Asset catalog loaded",
		zap.Int("assets", len(catalog.Assets())),
		zap.String("path", a.config.CatalogPath),
	)

	a.machine = exchange.NewMachine(exchange.NewMemoryStore(), exchange.NewComposer(catalog), a.config.CancelWords)
	return nil
}

// initBot initializes the Telegram bot and its optional collaborators
func (a *App) initBot() error {
	opts := bot.Options{
		AllowedUserIDs: a.config.AllowedUserIDs,
		TopExchanges:   a.config.TopExchanges,
	}

	coins, err := a.config.Coins()
	if err != nil {
		return err
	}
	priceCoins := make([]prices.Coin, 0, len(coins))
	for _, c := range coins {
		priceCoins = append(priceCoins, prices.Coin{ID: c.ID, Symbol: c.Symbol})
	}
	opts.Prices = prices.NewClient(a.config.PriceAPIURL, priceCoins, a.config.PriceCurrencies, a.config.PriceTimeout)

	if a.config.GeminiAPIKey != "" {
		gemini, err := assistant.NewGemini(context.Background(), a.config.GeminiAPIKey, a.config.GeminiModel, a.config.AssistantPrompt)
		if err != nil {
			return fmt.Errorf("failed to create assistant: %w", err)
		}
		opts.Assistant = gemini
		a.logger.Info("Assistant enabled", zap.String("model", a.config.GeminiModel))
	} else {
		a.logger.Warn("GEMINI_API_KEY not set, assistant disabled")
	}

	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.db, a.machine, opts, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.logger.Info("Bot created successfully", zap.Int64s("allowed_users", a.config.AllowedUserIDs))

	a.bot = telegramBot
	return nil
}

// initHTTPServer initializes the HTTP server for health checks, webhook and the Mini App API
func (a *App) initHTTPServer() {
	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      a.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Start HTTP server in background
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.config.KeepAliveURL != "" {
		pinger := NewKeepAlive(a.config.KeepAliveURL, a.config.KeepAliveInterval, a.logger)
		go pinger.Run(ctx)
	}

	if a.config.WebhookMode {
		a.logger.Info("Starting bot in WEBHOOK mode", zap.String("webhook_url", a.config.WebhookURL))
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		a.logger.Info("Webhook configured. Bot will receive updates via HTTP endpoint /telegram-webhook")
	} else {
		go func() {
			a.logger.Info("Starting bot in POLLING mode...")
			if err := a.bot.Start(); err != nil {
				a.logger.Fatal("Failed to start bot", zap.Error(err))
			}
		}()
	}

	<-sigChan

	a.logger.Info("Shutting down...")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	if a.cancel != nil {
		a.cancel()
	}

	if !a.config.WebhookMode {
		a.bot.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return nil
}
