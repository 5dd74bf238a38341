package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"hermes/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Telegram      TelegramConfig
	Trends        TrendsConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"hermes"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

type TelegramConfig struct {
	// BridgeURL points at the MTProto session bridge that holds the
	// authenticated user session and exposes channel reads over HTTP
	BridgeURL string        `envconfig:"TELEGRAM_BRIDGE_URL" required:"true"`
	AuthToken string        `envconfig:"TELEGRAM_BRIDGE_TOKEN"`
	Timeout   time.Duration `envconfig:"TELEGRAM_BRIDGE_TIMEOUT" default:"30s"`

	// Channels is the fixed set of channel handles polled for trends
	Channels []string `envconfig:"TELEGRAM_CHANNELS" default:"@glassnode,@coindesk,@cointelegraph,@whale_alert_io,@bitcoin,@IntoTheBlock,@CryptoWhale,@Blockworks_,@TheBlock__,@wublockchain"`
}

type TrendsConfig struct {
	BatchSize     int           `envconfig:"TRENDS_BATCH_SIZE" default:"3"`
	BatchDelay    time.Duration `envconfig:"TRENDS_BATCH_DELAY" default:"1500ms"`
	MessageLimit  int           `envconfig:"TRENDS_MESSAGE_LIMIT" default:"100"`
	MessagesKept  int           `envconfig:"TRENDS_MESSAGES_KEPT" default:"20"`
	RecencyWindow time.Duration `envconfig:"TRENDS_RECENCY_WINDOW" default:"48h"`
	ChannelsTTL   time.Duration `envconfig:"TRENDS_CHANNELS_TTL" default:"2m"`
	CoinsTTL      time.Duration `envconfig:"TRENDS_COINS_TTL" default:"5m"`
	TopicsTTL     time.Duration `envconfig:"TRENDS_TOPICS_TTL" default:"5m"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers
type WorkerConfig struct {
	// RefreshInterval matches the dashboard refresh expectation so that
	// interactive reads land on a warm cache
	RefreshInterval time.Duration `envconfig:"WORKER_REFRESH_INTERVAL" default:"15m"`
	RefreshEnabled  bool          `envconfig:"WORKER_REFRESH_ENABLED" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
