package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only meant for local development.
const DefaultJWTSecret = "cinestream_dev_secret_change_me"

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	SentryDSN string

	BaseURL        string
	MediaRoot      string
	CORSOrigin     string
	AuthRatePerMin int
}

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	ConnectAttempts int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// Load reads the .env file (if any) and then the process environment.
func Load() *Config {
	// A missing .env is fine; production reads the real environment.
	_ = godotenv.Load()

	return &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("SERVER_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "127.0.0.1"),
			Port:            getEnv("DB_PORT", "3306"),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", "password"),
			Name:            getEnv("DB_NAME", "cinestream"),
			ConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", DefaultJWTSecret),
			TTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,
		},
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		MediaRoot:      getEnv("MEDIA_ROOT", "./media"),
		CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:5173"),
		AuthRatePerMin: getEnvInt("AUTH_RATE_PER_MIN", 20),
	}
}

// DSN builds the go-sql-driver connection string. Times are read back as UTC time.Time values.
func (c DBConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%s", c.Host, c.Port)
	cfg.DBName = c.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

func (c *Config) UsingDefaultSecret() bool {
	return c.JWT.Secret == DefaultJWTSecret
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
