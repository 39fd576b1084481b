package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTP
	Probe    Probe
	Metrics  Metrics
	Postgres Postgres
	Sheets   Sheets
	Quotes   Quotes
	Bot      Bot
	Policy   Policy
}

type HTTP struct {
	Address           string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type Probe struct {
	Address string `env:"PROBE_ADDRESS" envDefault:":8091"`
}

type Metrics struct {
	Address string `env:"METRICS_ADDRESS" envDefault:":8092"`
}

// Sheets — источник админской конфигурации прайсинга (CSV-выгрузка).
type Sheets struct {
	CSVURL   string        `env:"SHEETS_CSV_URL,notEmpty"`
	CacheTTL time.Duration `env:"SHEETS_CACHE_TTL" envDefault:"1m"`
}

// Quotes — кэш рыночной котировки USDT/EUR.
type Quotes struct {
	CacheTTL        time.Duration `env:"QUOTES_CACHE_TTL" envDefault:"55s"`
	MaxStaleness    time.Duration `env:"QUOTES_MAX_STALENESS" envDefault:"10m"`
	RefreshInterval time.Duration `env:"QUOTES_REFRESH_INTERVAL" envDefault:"1m"`
}

type Bot struct {
	Token   string `env:"BOT_TOKEN,required"`
	ChatID  int64  `env:"BOT_CHAT_ID,required"`
	AdminID int64  `env:"BOT_ADMIN_ID,required"`
}

// Policy — делёж прибыли закрытых сделок: доля куратора, остаток агентству.
type Policy struct {
	CuratorShare string `env:"POLICY_CURATOR_SHARE" envDefault:"0.40"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return config, nil
}
