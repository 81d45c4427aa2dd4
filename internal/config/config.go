package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Config struct {
	Port           string
	MongoURI       string
	DBName         string
	JWTSecret      string
	TokenExpiry    time.Duration
	AllowedOrigins []string
	LogLevel       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NotificationTTL     time.Duration
	NotifyTimeout       time.Duration
	CleanupSchedule     string
	NotificationChannel string

	SMTP SMTPConfig

	BootstrapAdmin AdminConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Sender   string
	Password string
}

// Enabled reports whether outgoing email is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Sender != ""
}

// AdminConfig describes the account created on first start.
type AdminConfig struct {
	Name      string
	Email     string
	Password  string
	AdminType string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "uniadmin")
	v.SetDefault("TOKEN_EXPIRY", "24h")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NOTIFICATION_TTL", "720h")
	v.SetDefault("NOTIFY_TIMEOUT", "5s")
	v.SetDefault("CLEANUP_SCHEDULE", "@daily")
	v.SetDefault("NOTIFICATION_CHANNEL", "notifications")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("ADMIN_NAME", "Medical Officer")
	v.SetDefault("ADMIN_TYPE", "medical_officer")
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:           v.GetString("PORT"),
		MongoURI:       v.GetString("MONGO_URI"),
		DBName:         v.GetString("DB_NAME"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenExpiry:    v.GetDuration("TOKEN_EXPIRY"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		LogLevel:       v.GetString("LOG_LEVEL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		NotificationTTL:     v.GetDuration("NOTIFICATION_TTL"),
		NotifyTimeout:       v.GetDuration("NOTIFY_TIMEOUT"),
		CleanupSchedule:     v.GetString("CLEANUP_SCHEDULE"),
		NotificationChannel: v.GetString("NOTIFICATION_CHANNEL"),

		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetString("SMTP_PORT"),
			Sender:   v.GetString("SMTP_SENDER"),
			Password: v.GetString("SMTP_PASSWORD"),
		},

		BootstrapAdmin: AdminConfig{
			Name:      v.GetString("ADMIN_NAME"),
			Email:     v.GetString("ADMIN_EMAIL"),
			Password:  v.GetString("ADMIN_PASSWORD"),
			AdminType: v.GetString("ADMIN_TYPE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.TokenExpiry <= 0 {
		return errors.New("TOKEN_EXPIRY must be positive")
	}
	if c.NotificationTTL <= 0 {
		return errors.New("NOTIFICATION_TTL must be positive")
	}
	if c.NotifyTimeout <= 0 {
		return errors.New("NOTIFY_TIMEOUT must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
