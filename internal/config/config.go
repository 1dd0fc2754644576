package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// JWTSecret signs both access and refresh tokens (HS256).
	// Must be at least 32 bytes.
	JWTSecret       string        `env:"JWT_SECRET_KEY"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"336h"`

	// FrontendRedirectURL is where the browser lands after a successful
	// provider login, with accessToken/refreshToken query params appended.
	FrontendRedirectURL string   `env:"FRONTEND_REDIRECT_URL" envDefault:"http://localhost:3000/oauth/redirect"`
	AllowedOrigins      []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	KakaoClientID     string `env:"KAKAO_CLIENT_ID"`
	KakaoClientSecret string `env:"KAKAO_CLIENT_SECRET"`
	KakaoRedirectURL  string `env:"KAKAO_REDIRECT_URL"`

	NaverClientID     string `env:"NAVER_CLIENT_ID"`
	NaverClientSecret string `env:"NAVER_CLIENT_SECRET"`
	NaverRedirectURL  string `env:"NAVER_REDIRECT_URL"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if len(cfg.JWTSecret) < 32 {
		return Config{}, fmt.Errorf("config: JWT_SECRET_KEY must be at least 32 bytes, got %d", len(cfg.JWTSecret))
	}
	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("config: DATABASE_DSN is required")
	}

	return cfg, nil
}
