package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, parsed from the environment once
// at bootstrap. Required values fail Load, so a misconfigured process never
// starts serving.
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL"`

	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	TokenIssuer     string        `env:"TOKEN_ISSUER" envDefault:"QuotesSharer"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:"localhost"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	NaverClientID     string `env:"NAVER_CLIENT_ID,required,notEmpty"`
	NaverClientSecret string `env:"NAVER_CLIENT_SECRET,required,notEmpty"`
	NaverAuthState    string `env:"NAVER_AUTH_STATE"`

	SentryDSN  string `env:"SENTRY_DSN"`
	CronSecret string `env:"CRON_SECRET"`

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"10m"`

	LoginRateLimitMax    int           `env:"LOGIN_RATE_LIMIT_MAX" envDefault:"10"`
	LoginRateLimitWindow time.Duration `env:"LOGIN_RATE_LIMIT_WINDOW" envDefault:"1m"`

	CleanupBatchSize int `env:"AUTH_CLEANUP_BATCH_SIZE" envDefault:"500"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}
