package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTP
	Logger   Logger
	Postgres Postgres
	Kafka    Kafka
	MsqPay   MsqPay
	Session  Session
}

type HTTP struct {
	Port           int      `env:"HTTP_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envDefault:""`
}

type Logger struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Postgres struct {
	DSN     string `env:"POSTGRES_DSN"`
	MaxConn int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

type Kafka struct {
	Brokers              []string `env:"KAFKA_BROKERS"`
	CheckoutStartedTopic string   `env:"KAFKA_CHECKOUT_STARTED_TOPIC" envDefault:"checkout-started"`
}

type MsqPay struct {
	// GatewayURL serves canister queries as JSON.
	GatewayURL          string        `env:"MSQ_PAY_GATEWAY_URL"`
	CanisterID          string        `env:"MSQ_PAY_CANISTER_ID" envDefault:"prlga-2iaaa-aaaak-akp4a-cai"`
	MemoDomain          string        `env:"MSQ_PAY_MEMO_DOMAIN"`
	RequestTimeout      time.Duration `env:"MSQ_PAY_REQUEST_TIMEOUT" envDefault:"5s"`
	RetryMax            int           `env:"MSQ_PAY_RETRY_MAX" envDefault:"3"`
	RefreshInterval     time.Duration `env:"MSQ_PAY_REFRESH_INTERVAL" envDefault:"1h"`
	InvoicePollInterval time.Duration `env:"MSQ_PAY_INVOICE_POLL_INTERVAL" envDefault:"5s"`
	UrgentTTL           uint8         `env:"MSQ_PAY_URGENT_TTL" envDefault:"2"`
}

type Session struct {
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
}

func New(envPath string) (Config, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	c, err := env.ParseAsWithOptions[Config](env.Options{
		RequiredIfNoDef: true,
	})
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
