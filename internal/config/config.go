package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"agile-board-go/pkg/logger"
)

type Config struct {
	HTTPPort string
	Env      string
	DB       DBConfig
	Auth     AuthConfig
	Jira     JiraConfig
	CORS     CORSConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type JiraConfig struct {
	BaseURL          string
	UserEmail        string
	APIToken         string
	ProjectKey       string
	IssueTypeName    string
	StoryPointsField string
	Timeout          time.Duration
}

type CORSConfig struct {
	AllowedOrigins string
}

func Load(log logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else {
		log.Info("config: loaded .env")
	}

	cfg := Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "agile_board"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("JWT_TOKEN_TTL", 24*time.Hour),
		},
		Jira: JiraConfig{
			BaseURL:          getEnv("JIRA_BASE_URL", ""),
			UserEmail:        getEnv("JIRA_USER_EMAIL", ""),
			APIToken:         getEnv("JIRA_API_TOKEN", ""),
			ProjectKey:       getEnv("JIRA_PROJECT_KEY", ""),
			IssueTypeName:    getEnv("JIRA_ISSUE_TYPE", "Story"),
			StoryPointsField: getEnv("JIRA_STORY_POINTS_FIELD", "customfield_10016"),
			Timeout:          getEnvDuration("JIRA_TIMEOUT", 10*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.Env == "production" {
			return Config{}, errors.New("JWT_SECRET must be set in production")
		}
		cfg.Auth.JWTSecret = "dev-only-secret"
		log.Warn("config: JWT_SECRET not set, using development default")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
