package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config ortam yapılandırmalarını tutar
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	// Store: "postgres" veya "memory"
	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string
	DBSSLMode   string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	TxMaxRetries      int
	AutoMigrate       bool // başlangıçta gömülü migration'ları uygula

	CatalogFile string
	SeedFile    string
	Timezone    string // günlük teşekkür limiti için takvim günü

	JWTSecret string

	RedisURL string

	ResendAPIKey string
	EmailFrom    string

	NotifyWorkers int
	NotifyBuffer  int

	StripeWebhookSecret string

	ReconcileCron      string // boş ise zamanlayıcı kapalı
	ReconcileFixPoints bool

	RateLimitPerMinute      int
	RateLimitBurst          int
	WriteRateLimitPerMinute int // bakiye değiştiren istekler
}

// yardımcı fonksiyon: ortam değişkeni yoksa default değeri döner
func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("⚠️ Geçersiz sayı, default kullanılıyor")
		return defaultVal
	}
	return v
}

func getEnvBool(key string, defaultVal bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("⚠️ Geçersiz süre, default kullanılıyor")
		return defaultVal
	}
	return v
}

// LoadConfig tüm yapılandırmayı yükler
func LoadConfig() *Config {
	return &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "thankatech"),
		DBPass:      getEnv("DB_PASS", "password"),
		DBName:      getEnv("DB_NAME", "thankatech"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		TxMaxRetries:      getEnvInt("TX_MAX_RETRIES", 3),
		AutoMigrate:       getEnvBool("AUTO_MIGRATE", false),

		CatalogFile: getEnv("CATALOG_FILE", ""),
		SeedFile:    getEnv("SEED_FILE", ""),
		Timezone:    getEnv("DAILY_LIMIT_TZ", "UTC"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),

		RedisURL: getEnv("REDIS_URL", ""),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "ThankATech <no-reply@thankatech.com>"),

		NotifyWorkers: getEnvInt("NOTIFY_WORKERS", 3),
		NotifyBuffer:  getEnvInt("NOTIFY_BUFFER", 100),

		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		ReconcileCron:      getEnv("RECONCILE_CRON", ""),
		ReconcileFixPoints: getEnvBool("RECONCILE_FIX_POINTS", false),

		RateLimitPerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:          getEnvInt("RATE_LIMIT_BURST", 20),
		WriteRateLimitPerMinute: getEnvInt("RATE_LIMIT_WRITE_PER_MINUTE", 30),
	}
}

// GetDSN veritabanı bağlantı URL'sini döner
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location günlük limit için saat dilimi; bilinmiyorsa UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn().Str("timezone", c.Timezone).Msg("⚠️ Bilinmeyen saat dilimi, UTC kullanılıyor")
		return time.UTC
	}
	return loc
}

// Validate çalışma zamanında eksik kritik ayarları yakalar
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("bilinmeyen STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.TxMaxRetries < 1 {
		return fmt.Errorf("TX_MAX_RETRIES en az 1 olmalı: %d", c.TxMaxRetries)
	}
	// memory store her unit'te tüm state'i kopyalar, sadece geliştirme ve test içindir
	if c.AppEnv == "production" && c.StoreDriver == "memory" {
		return fmt.Errorf("production ortamında STORE_DRIVER=memory kullanılamaz")
	}
	if c.AppEnv == "production" && c.JWTSecret == "your-secret-key-change-this-in-production" {
		return fmt.Errorf("production ortamında JWT_SECRET ayarlanmalı")
	}
	return nil
}
