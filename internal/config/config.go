package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// Mail providers used by the relay
const (
	MailProviderBrevo = "brevo"
	MailProviderSMTP  = "smtp"
	MailProviderLog   = "log"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port          string `yaml:"port" env:"SERVER_PORT"`
		Mode          string `yaml:"mode" env:"SERVER_MODE"`
		PublicBaseURL string `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL"`
		ReadTimeout   string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout  string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`

		// Dashboard origins allowed to call the API
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Driver        string `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath     string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		Bucket        string `yaml:"bucket" env:"STORAGE_BUCKET"`
		PublicBaseURL string `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
		S3Endpoint    string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
		S3Region      string `yaml:"s3_region" env:"S3_REGION"`
		S3AccessKey   string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
		S3SecretKey   string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
		S3PathStyle   bool   `yaml:"s3_path_style" env:"S3_FORCE_PATH_STYLE"`
	} `yaml:"storage"`

	Relay struct {
		Port           string   `yaml:"port" env:"RELAY_PORT"`
		URL            string   `yaml:"url" env:"RELAY_URL"`
		Timeout        string   `yaml:"timeout" env:"RELAY_TIMEOUT"`
		FetchTimeout   string   `yaml:"fetch_timeout" env:"RELAY_FETCH_TIMEOUT"`
		MaxPDFBytes    int64    `yaml:"max_pdf_bytes" env:"RELAY_MAX_PDF_BYTES"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"RELAY_ALLOWED_ORIGINS"`
	} `yaml:"relay"`

	Mail struct {
		Provider     string `yaml:"provider" env:"MAIL_PROVIDER"`
		FromEmail    string `yaml:"from_email" env:"MAIL_FROM_EMAIL"`
		FromName     string `yaml:"from_name" env:"MAIL_FROM_NAME"`
		BrevoAPIKey  string `yaml:"brevo_api_key" env:"BREVO_API_KEY"`
		BrevoBaseURL string `yaml:"brevo_base_url" env:"BREVO_BASE_URL"`
		SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
		SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		SendTimeout  string `yaml:"send_timeout" env:"MAIL_SEND_TIMEOUT"`
	} `yaml:"mail"`

	RateLimit struct {
		VerifyPerSecond float64 `yaml:"verify_per_second" env:"RATE_LIMIT_VERIFY_PER_SECOND"`
		VerifyBurst     int     `yaml:"verify_burst" env:"RATE_LIMIT_VERIFY_BURST"`
	} `yaml:"rate_limit"`

	Document struct {
		LogoPath       string `yaml:"logo_path" env:"DOCUMENT_LOGO_PATH"`
		MaxRefAttempts int    `yaml:"max_ref_attempts" env:"DOCUMENT_MAX_REF_ATTEMPTS"`
		ReconcileBatch int    `yaml:"reconcile_batch" env:"DOCUMENT_RECONCILE_BATCH"`
	} `yaml:"document"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from .env, a YAML file and environment variables,
// in that order of increasing precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "75s"
	config.Server.AllowedOrigins = []string{"*"}

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "offerdesk"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "12h"
	config.JWT.Issuer = "offerdesk"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.Driver = StorageDriverLocal
	config.Storage.LocalPath = "storage/offer-letters"
	config.Storage.Bucket = "offer-letters"
	config.Storage.S3Region = "us-east-1"
	config.Storage.S3PathStyle = true

	config.Relay.Port = "5000"
	config.Relay.URL = "http://localhost:5000"
	config.Relay.Timeout = "60s"
	config.Relay.FetchTimeout = "20s"
	config.Relay.MaxPDFBytes = 10 << 20
	config.Relay.AllowedOrigins = []string{"*"}

	config.Mail.Provider = MailProviderLog
	config.Mail.FromName = "HR Team"
	config.Mail.BrevoBaseURL = "https://api.brevo.com"
	config.Mail.SMTPPort = 587
	config.Mail.SendTimeout = "30s"

	config.RateLimit.VerifyPerSecond = 2
	config.RateLimit.VerifyBurst = 10

	config.Document.MaxRefAttempts = 5
	config.Document.ReconcileBatch = 100

	config.Seed.AdminName = "HR Admin"
}

// validateConfig checks settings shared by every command
func validateConfig(config *Config) error {
	durations := map[string]string{
		"server read timeout":     config.Server.ReadTimeout,
		"server write timeout":    config.Server.WriteTimeout,
		"database conn lifetime":  config.Database.ConnMaxLifetime,
		"JWT access token expiry": config.JWT.AccessTokenExpiration,
		"relay timeout":           config.Relay.Timeout,
		"relay fetch timeout":     config.Relay.FetchTimeout,
		"mail send timeout":       config.Mail.SendTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch config.Storage.Driver {
	case StorageDriverLocal:
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("storage local_path is required for the local driver")
		}
	case StorageDriverS3:
		if config.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	switch config.Mail.Provider {
	case MailProviderBrevo, MailProviderSMTP, MailProviderLog:
	default:
		return fmt.Errorf("unknown mail provider %q", config.Mail.Provider)
	}

	if config.Document.MaxRefAttempts < 1 {
		return fmt.Errorf("document max_ref_attempts must be at least 1")
	}

	return nil
}

// ValidateForAPI checks settings the API server cannot run without.
func (c *Config) ValidateForAPI() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Relay.URL == "" {
		return fmt.Errorf("relay url is required")
	}

	// The API must outwait the relay's own worst case
	relayTimeout := MustDuration(c.Relay.Timeout)
	relayWorstCase := MustDuration(c.Relay.FetchTimeout) + MustDuration(c.Mail.SendTimeout)
	if relayTimeout <= relayWorstCase {
		return fmt.Errorf("relay timeout %s must exceed fetch_timeout + mail send_timeout (%s)", relayTimeout, relayWorstCase)
	}
	if MustDuration(c.Server.WriteTimeout) <= relayTimeout {
		return fmt.Errorf("server write timeout must exceed relay timeout %s", relayTimeout)
	}
	return nil
}

// ValidateForRelay checks settings the email relay cannot run without.
func (c *Config) ValidateForRelay() error {
	switch c.Mail.Provider {
	case MailProviderBrevo:
		if c.Mail.BrevoAPIKey == "" || c.Mail.FromEmail == "" {
			return fmt.Errorf("brevo provider requires api key and from email")
		}
	case MailProviderSMTP:
		if c.Mail.SMTPHost == "" || c.Mail.FromEmail == "" {
			return fmt.Errorf("smtp provider requires host and from email")
		}
	}
	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// APIBaseURL is the externally reachable address of the API server.
func (c *Config) APIBaseURL() string {
	if c.Server.PublicBaseURL != "" {
		return strings.TrimRight(c.Server.PublicBaseURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}

// MustDuration parses a duration that validateConfig has already accepted.
func MustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("config: unvalidated duration %q: %v", value, err))
	}
	return d
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
