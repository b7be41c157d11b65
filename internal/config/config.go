package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// AllowedUserIDs restricts the bot to these users; empty admits everyone
	AllowedUserIDs []int64 `envconfig:"ALLOWED_USER_IDS"`

	// Bot mode configuration
	WebhookMode bool   `envconfig:"WEBHOOK_MODE"` // If true, use webhook mode; if false, use polling mode
	WebhookURL  string `envconfig:"WEBHOOK_URL"`  // Required if WebhookMode is true
	Port        string `envconfig:"PORT" default:"8080"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// ClickHouse configuration
	ClickHouseHost     string `envconfig:"CLICKHOUSE_HOST"`
	ClickHousePort     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	ClickHouseDatabase string `envconfig:"CLICKHOUSE_DATABASE" default:"default"`
	ClickHouseUser     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	ClickHousePassword string `envconfig:"CLICKHOUSE_PASSWORD"`
	ClickHouseUseTLS   bool   `envconfig:"CLICKHOUSE_USE_TLS"`

	UseMockDB bool `envconfig:"USE_MOCK_DB"`

	// Exchange dialog
	CatalogPath string   `envconfig:"CATALOG_PATH"` // empty means the embedded catalog
	CancelWords []string `envconfig:"CANCEL_WORDS" default:"cancel,stop,отмена,стоп"`

	// Language model
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	AssistantPrompt string `envconfig:"ASSISTANT_PROMPT" default:"You are CryptoMate, a concise assistant for cryptocurrency and currency exchange questions."`

	// Price quotes
	PriceAPIURL     string        `envconfig:"PRICE_API_URL" default:"https://api.coingecko.com/api/v3"`
	PriceCoins      []string      `envconfig:"PRICE_COINS" default:"bitcoin:BTC,ethereum:ETH,tether:USDT,the-open-network:TON,solana:SOL"`
	PriceCurrencies []string      `envconfig:"PRICE_CURRENCIES" default:"usd,uah,rub"`
	PriceTimeout    time.Duration `envconfig:"PRICE_TIMEOUT" default:"10s"`

	TopExchanges []string `envconfig:"TOP_EXCHANGES" default:"Bybit,BingX,OKX"`

	// Keep-alive self ping, disabled when the URL is empty
	KeepAliveURL      string        `envconfig:"KEEPALIVE_URL"`
	KeepAliveInterval time.Duration `envconfig:"KEEPALIVE_INTERVAL" default:"10m"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if strings.TrimSpace(config.TelegramToken) == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if config.WebhookMode && config.WebhookURL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
	}
	config.WebhookURL = strings.TrimRight(config.WebhookURL, "/")

	if !config.UseMockDB && config.ClickHouseHost == "" {
		return nil, fmt.Errorf("CLICKHOUSE_HOST is required when USE_MOCK_DB is not set")
	}

	if config.KeepAliveURL != "" && config.KeepAliveInterval <= 0 {
		return nil, fmt.Errorf("KEEPALIVE_INTERVAL must be positive, got %s", config.KeepAliveInterval)
	}

	if _, err := config.Coins(); err != nil {
		return nil, err
	}

	return config, nil
}

// Coin is a CoinGecko coin id with the ticker shown to users
type Coin struct {
	ID     string
	Symbol string
}

// Coins parses PRICE_COINS entries of the form "id:SYMBOL"
func (c *Config) Coins() ([]Coin, error) {
	coins := make([]Coin, 0, len(c.PriceCoins))
	for _, entry := range c.PriceCoins {
		id, symbol, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || id == "" || symbol == "" {
			return nil, fmt.Errorf("invalid PRICE_COINS entry %q, expected id:SYMBOL", entry)
		}
		coins = append(coins, Coin{ID: id, Symbol: strings.ToUpper(symbol)})
	}
	return coins, nil
}
