package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr       string
	SessionSecret  string
	RequestTimeout time.Duration
	Postgres       PostgresConfig
	OIDC           OIDCConfig
	Storage        StorageConfig
	Plaid          PlaidConfig
	Email          EmailConfig
	RedisAddr      string
	KafkaBrokers   []string
	KafkaTopic     string
}

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	DBName   string
	Port     string
	TimeZone string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// StorageConfig points at an S3-compatible bucket. PublicBaseURL is the
// prefix public object URLs are built from.
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

type PlaidConfig struct {
	ClientID    string
	Secret      string
	Env         string
	ClientName  string
	CountryCode string
}

// Configured reports whether real Plaid credentials are present.
func (p PlaidConfig) Configured() bool {
	return p.ClientID != "" && p.Secret != ""
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
}

func Load() Config {
	return Config{
		HTTPAddr:       getEnvOrDefault("HTTP_ADDR", ":8080"),
		SessionSecret:  getEnvOrDefault("SESSION_SECRET", "change-me"),
		RequestTimeout: getDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
		Postgres:       LoadPostgresConfig(),
		OIDC:           LoadOIDCConfig(),
		Storage:        LoadStorageConfig(),
		Plaid:          LoadPlaidConfig(),
		Email:          LoadEmailConfig(),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBrokers:   splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnvOrDefault("KAFKA_CART_TOPIC", "cart.events"),
	}
}

func LoadPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		User:     getEnvOrDefault("POSTGRES_USER", "test"),
		Password: getEnvOrDefault("POSTGRES_PASSWORD", "test"),
		DBName:   getEnvOrDefault("POSTGRES_DB", "test"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		TimeZone: getEnvOrDefault("DB_TIMEZONE", "UTC"),
	}
}

func LoadOIDCConfig() OIDCConfig {
	return OIDCConfig{
		Issuer:       os.Getenv("OIDC_ISSUER"),
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
	}
}

func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		Bucket:          getEnvOrDefault("STORAGE_BUCKET", "product-images"),
		Region:          getEnvOrDefault("STORAGE_REGION", "us-east-1"),
		Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
		AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		PublicBaseURL:   os.Getenv("STORAGE_PUBLIC_BASE_URL"),
	}
}

func LoadPlaidConfig() PlaidConfig {
	return PlaidConfig{
		ClientID:    os.Getenv("PLAID_CLIENT_ID"),
		Secret:      os.Getenv("PLAID_SECRET"),
		Env:         getEnvOrDefault("PLAID_ENV", "sandbox"),
		ClientName:  getEnvOrDefault("PLAID_CLIENT_NAME", "TrustCart"),
		CountryCode: getEnvOrDefault("PLAID_COUNTRY_CODE", "US"),
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
		return defaultValue
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
