package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	Auth     AuthConfig
	Portal   PortalConfig
	Logging  LoggingConfig
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AWSConfig covers the attachment bucket and the SES sender.
type AWSConfig struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	SenderEmail     string
}

// AuthConfig represents token signing configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PortalConfig carries the organization identity used on print documents.
type PortalConfig struct {
	OrgName string
	OrgLine string
	Issuer  string
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string
}

// LoadConfig loads configuration from .env (if present) and environment
// variables.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; env vars may be set directly.
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "oncocare_portal",
			SSLMode: "disable",
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
		},
		Portal: PortalConfig{
			OrgName: "Cancer Care Foundation",
			Issuer:  "Case Management Office",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	overrideWithEnv(config)

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		config.Database.SSLMode = sslMode
	}

	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		config.AWS.Bucket = bucket
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		config.AWS.Endpoint = endpoint
	}
	if key := os.Getenv("S3_ACCESS_KEY_ID"); key != "" {
		config.AWS.AccessKeyID = key
	}
	if secret := os.Getenv("S3_SECRET_ACCESS_KEY"); secret != "" {
		config.AWS.SecretAccessKey = secret
	}
	if pathStyle := os.Getenv("S3_PATH_STYLE"); pathStyle != "" {
		config.AWS.PathStyle = pathStyle == "true"
	}
	if sender := os.Getenv("SES_SENDER_EMAIL"); sender != "" {
		config.AWS.SenderEmail = sender
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Auth.TokenTTL = d
		}
	}

	if org := os.Getenv("PORTAL_ORG_NAME"); org != "" {
		config.Portal.OrgName = org
	}
	if line := os.Getenv("PORTAL_ORG_LINE"); line != "" {
		config.Portal.OrgLine = line
	}
	if issuer := os.Getenv("PORTAL_ISSUER"); issuer != "" {
		config.Portal.Issuer = issuer
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
