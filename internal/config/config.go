package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port        string
	Environment string
	AppId       string
	SkipAuth    bool

	MongoURI string
	DBName   string

	JWT            JWTConfig
	Log            LogConfig
	CORS           CORSConfig
	Redis          RedisConfig
	RabbitMQ       RabbitMQConfig
	SMTP           SMTPConfig
	Stripe         StripeConfig
	Uploads        UploadConfig
	Recommendation RecommendationConfig
	Scheduler      SchedulerConfig
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type LogConfig struct {
	Level    string
	Format   string
	ToMongo  bool
	BufferSz int
}

type CORSConfig struct {
	AllowedOrigins string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromEmail string
	FromName  string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
	AllowedMIMEs []string
}

type RecommendationConfig struct {
	CacheTTL time.Duration
}

type SchedulerConfig struct {
	Enabled          bool
	ReminderSchedule string
	ExpirySchedule   string
	ReminderWindow   time.Duration
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	maxUpload := v.GetInt64("UPLOAD_MAX_SIZE")
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	return &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		AppId:       v.GetString("APP_ID"),
		SkipAuth:    v.GetBool("SKIP_AUTH"),
		MongoURI:    v.GetString("MONGO_URI"),
		DBName:      v.GetString("DB_NAME"),
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 72*time.Hour),
		},
		Log: LogConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Format:   v.GetString("LOG_FORMAT"),
			ToMongo:  v.GetBool("LOG_TO_MONGO"),
			BufferSz: v.GetInt("LOG_BUFFER_SIZE"),
		},
		CORS: CORSConfig{AllowedOrigins: v.GetString("ALLOWED_ORIGINS")},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			User:      v.GetString("SMTP_USER"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      strings.ToLower(v.GetString("STRIPE_CURRENCY")),
		},
		Uploads: UploadConfig{
			Dir:          v.GetString("UPLOAD_DIR"),
			MaxSizeBytes: maxUpload,
			AllowedMIMEs: splitAndTrim(v.GetString("UPLOAD_ALLOWED_MIME_TYPES")),
		},
		Recommendation: RecommendationConfig{
			CacheTTL: parseDuration(v.GetString("RECOMMENDATION_CACHE_TTL"), 5*time.Minute),
		},
		Scheduler: SchedulerConfig{
			Enabled:          v.GetBool("SCHEDULER_ENABLED"),
			ReminderSchedule: v.GetString("SCHEDULER_REMINDER_CRON"),
			ExpirySchedule:   v.GetString("SCHEDULER_EXPIRY_CRON"),
			ReminderWindow:   parseDuration(v.GetString("SCHEDULER_REMINDER_WINDOW"), 24*time.Hour),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("APP_ID", "eduvibe")
	v.SetDefault("SKIP_AUTH", false)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "eduvibe")

	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("JWT_EXPIRATION", "72h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_TO_MONGO", true)
	v.SetDefault("LOG_BUFFER_SIZE", 1000)

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "eduvibe.events")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "EduVibe")

	v.SetDefault("STRIPE_CURRENCY", "usd")

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_SIZE", 10<<20)
	v.SetDefault("UPLOAD_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp,application/pdf")

	v.SetDefault("RECOMMENDATION_CACHE_TTL", "5m")

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_REMINDER_CRON", "*/15 * * * *")
	v.SetDefault("SCHEDULER_EXPIRY_CRON", "0 * * * *")
	v.SetDefault("SCHEDULER_REMINDER_WINDOW", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// viper reports a missing explicit config file as a PathError rather than ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory") ||
		strings.Contains(err.Error(), "cannot find the file")
}
