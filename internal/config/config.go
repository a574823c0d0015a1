// Package config loads process configuration from defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration of the API process.
type Config struct {
	Env       string          `yaml:"env" env:"APP_ENV"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	HTTP      HTTPConfig      `yaml:"http" envPrefix:"HTTP_"`
	DB        DBConfig        `yaml:"db" envPrefix:"DB_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	Google    GoogleConfig    `yaml:"google" envPrefix:"GOOGLE_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	Mail      MailConfig      `yaml:"mail" envPrefix:"MAIL_"`
	AMQP      AMQPConfig      `yaml:"amqp" envPrefix:"AMQP_"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Resume    ResumeConfig    `yaml:"resume" envPrefix:"RESUME_"`
	Admin     AdminConfig     `yaml:"admin" envPrefix:"ADMIN_"`
}

// HTTPConfig configures the listener and CORS.
type HTTPConfig struct {
	Port         int           `yaml:"port" env:"PORT"`
	AllowOrigins []string      `yaml:"allow_origins" env:"ALLOW_ORIGINS" envSeparator:","`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	PublicURL    string        `yaml:"public_url" env:"PUBLIC_URL"`
}

// DBConfig holds the parameters for connecting to PostgreSQL.
// ConnectionString wins over the individual fields when set.
type DBConfig struct {
	Host             string `yaml:"host" env:"HOST"`
	Port             string `yaml:"port" env:"PORT"`
	User             string `yaml:"user" env:"USERNAME"`
	Password         string `yaml:"password" env:"PASSWORD"`
	Name             string `yaml:"name" env:"DATABASE"`
	ConnectionString string `yaml:"connection_string" env:"CONNECTION_STR"`
	MaxOpenConns     int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	Debug            bool   `yaml:"debug" env:"DEBUG"`
}

// DSN returns the connection string for the configured database.
func (d DBConfig) DSN() (string, error) {
	if d.ConnectionString != "" {
		return d.ConnectionString, nil
	}
	if d.Host == "" || d.Port == "" || d.User == "" || d.Name == "" {
		return "", errors.New("database configuration is incomplete")
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name), nil
}

// AuthConfig configures token lifetimes and hashing cost.
type AuthConfig struct {
	Secret     string        `yaml:"secret" env:"SECRET"`
	Issuer     string        `yaml:"issuer" env:"ISSUER"`
	AccessTTL  time.Duration `yaml:"access_ttl" env:"ACCESS_TTL"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"REFRESH_TTL"`
	OTPTTL     time.Duration `yaml:"otp_ttl" env:"OTP_TTL"`
	ResetTTL   time.Duration `yaml:"reset_ttl" env:"RESET_TTL"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

// GoogleConfig configures Google sign-in. Empty ClientID disables it.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirect_url" env:"REDIRECT_URL"`
	UserInfoURL  string `yaml:"user_info_url" env:"USER_INFO_URL"`
}

// RedisConfig configures the cache and rate-limit backend. Empty Addr disables Redis.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	JobTTL   time.Duration `yaml:"job_ttl" env:"JOB_TTL"`
}

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	Provider  string `yaml:"provider" env:"PROVIDER"`
	Bucket    string `yaml:"bucket" env:"BUCKET"`
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	Region    string `yaml:"region" env:"REGION"`
	UseSSL    bool   `yaml:"use_ssl" env:"USE_SSL"`
}

// MailConfig configures SMTP delivery. Empty Host logs messages instead of sending them.
type MailConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	From     string `yaml:"from" env:"FROM"`
}

// AMQPConfig configures the notification event exchange. Empty URL disables publishing.
type AMQPConfig struct {
	URL      string `yaml:"url" env:"URL"`
	Exchange string `yaml:"exchange" env:"EXCHANGE"`
}

// RateLimitConfig configures inbound request limiting.
type RateLimitConfig struct {
	RequestsPerSecond uint `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	AuthPerMinute     uint `yaml:"auth_per_minute" env:"AUTH_PER_MINUTE"`
}

// ResumeConfig bounds resume uploads.
type ResumeConfig struct {
	MaxBytes     int64         `yaml:"max_bytes" env:"MAX_BYTES"`
	AllowedTypes []string      `yaml:"allowed_types" env:"ALLOWED_TYPES" envSeparator:","`
	UploadWindow time.Duration `yaml:"upload_window" env:"UPLOAD_WINDOW"`
}

// AdminConfig seeds an ADMIN account at startup when both fields are set.
type AdminConfig struct {
	Email    string `yaml:"email" env:"EMAIL"`
	Password string `yaml:"password" env:"PASSWORD"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Env:      "development",
		LogLevel: "info",
		HTTP: HTTPConfig{
			Port:         8080,
			AllowOrigins: []string{"http://localhost:3000"},
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 1 << 20,
			PublicURL:    "http://localhost:3000",
		},
		DB: DBConfig{MaxOpenConns: 25},
		Auth: AuthConfig{
			Issuer:     "jobportal",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			OTPTTL:     10 * time.Minute,
			ResetTTL:   time.Hour,
			BcryptCost: 12,
		},
		Google: GoogleConfig{UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo"},
		Redis:  RedisConfig{JobTTL: 5 * time.Minute},
		Storage: StorageConfig{
			Provider: "minio",
			Bucket:   "resumes",
			Region:   "us-east-1",
		},
		Mail:      MailConfig{Port: 587, From: "no-reply@jobportal.local"},
		AMQP:      AMQPConfig{Exchange: "jobportal.events"},
		RateLimit: RateLimitConfig{RequestsPerSecond: 5, AuthPerMinute: 20},
		Resume: ResumeConfig{
			MaxBytes: 5 << 20,
			AllowedTypes: []string{
				"application/pdf",
				"application/msword",
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			},
			UploadWindow: time.Hour,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by CONFIG_FILE, then environment variables.
// The result is validated.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse is Load without validation, for tools that only need part of the configuration.
func Parse() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot start with.
func (c Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("AUTH_SECRET is required")
	}
	if len(c.Auth.Secret) < 32 {
		return errors.New("AUTH_SECRET must be at least 32 characters")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("AUTH_BCRYPT_COST %d out of range", c.Auth.BcryptCost)
	}
	switch c.Storage.Provider {
	case "gcs", "minio":
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q", c.Storage.Provider)
	}
	if c.Resume.MaxBytes <= 0 {
		return errors.New("RESUME_MAX_BYTES must be positive")
	}
	return nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}
