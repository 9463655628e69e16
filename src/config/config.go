package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseDsn      string        `env:"DATABASE_DSN,required"`
	RedisDsn         string        `env:"REDIS_DSN,default=localhost:6379"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	DashboardUuid    string        `env:"DASHBOARD_UUID"`
	MarketDataDsn    string        `env:"MARKET_DATA_DSN,default=http://localhost:8080"`
	MarketDataPath   string        `env:"MARKET_DATA_PATH,default=/api/processed-data"`
	MarketDataWindow string        `env:"MARKET_DATA_WINDOW,default=24h"`
	RefreshInterval  time.Duration `env:"REFRESH_INTERVAL,default=60s"`
	AutoRefresh      bool          `env:"AUTO_REFRESH,default=true"`
	IngestEnabled    bool          `env:"INGEST_ENABLED,default=true"`
	IngestInterval   time.Duration `env:"INGEST_INTERVAL,default=60s"`
	BinanceApiDsn    string        `env:"BINANCE_API_DSN,default=https://api.binance.com"`
	BinanceRps       float64       `env:"BINANCE_RPS,default=10"`
	BtcSymbol        string        `env:"BTC_SYMBOL,default=BTCUSDT"`
	EthSymbol        string        `env:"ETH_SYMBOL,default=ETHUSDT"`
	LogLevel         string        `env:"LOG_LEVEL,default=info"`
	HttpPort         int           `env:"HTTP_PORT,default=8080"`
	ChartLayoutFile  string        `env:"CHART_LAYOUT_FILE"`
}

func LoadConfig() (Config, error) {
	var config Config
	if err := envdecode.Decode(&config); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if config.RefreshInterval <= 0 {
		return Config{}, fmt.Errorf("config: REFRESH_INTERVAL must be positive, %s given", config.RefreshInterval)
	}
	if config.IngestInterval <= 0 {
		return Config{}, fmt.Errorf("config: INGEST_INTERVAL must be positive, %s given", config.IngestInterval)
	}

	return config, nil
}

// ConfigureLogger applies LOG_LEVEL; an unknown level keeps info.
func ConfigureLogger(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		parsed = log.InfoLevel
	}

	log.SetLevel(parsed)
}
