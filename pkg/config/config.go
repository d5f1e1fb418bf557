package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Redis struct {
		Addr     string        `env:"REDIS_ADDR"`
		Password string        `env:"REDIS_PASSWORD"`
		DB       int           `env:"REDIS_DB" env-default:"0"`
		TTL      time.Duration `env:"REDIS_TTL" env-default:"5m"`
	}
	Telegram struct {
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel int64  `env:"TELEGRAM_CHANNEL"`
	}
	Gallery struct {
		CleanupHour      uint          `env:"GALLERY_CLEANUP_HOUR" env-default:"3"`
		CleanupMinute    uint          `env:"GALLERY_CLEANUP_MINUTE" env-default:"0"`
		Timezone         string        `env:"GALLERY_TIMEZONE" env-default:"UTC"`
		CleanupTimeout   time.Duration `env:"GALLERY_CLEANUP_TIMEOUT" env-default:"5m"`
		ProbeTimeout     time.Duration `env:"GALLERY_PROBE_TIMEOUT" env-default:"10s"`
		ProbeConcurrency int           `env:"GALLERY_PROBE_CONCURRENCY" env-default:"8"`
		OperatorToken    string        `env:"GALLERY_OPERATOR_TOKEN"`
	}
	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" env-default:"10"`
		Per      time.Duration `env:"RATE_LIMIT_PER" env-default:"10s"`
		Burst    int           `env:"RATE_LIMIT_BURST" env-default:"5"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the postgres connection string in URL form.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
