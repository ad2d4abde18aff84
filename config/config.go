package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Server
	Port           string   `envconfig:"PORT" default:"8080"`
	Environment    string   `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	Catalog  CatalogConfig
	Session  SessionConfig
	Database DatabaseConfig
	Receipt  ReceiptConfig
	AI       AIConfig
	WhatsApp WhatsAppConfig
}

type CatalogConfig struct {
	Dir              string  `envconfig:"CATALOG_DIR" default:"./data"`
	DefaultCity      string  `envconfig:"DEFAULT_CITY" default:"Kochi"`
	ResolverStrategy string  `envconfig:"RESOLVER_STRATEGY" default:"rules"` // "rules" or "classifier"
	FuzzyCutoff      float64 `envconfig:"FUZZY_CUTOFF" default:"0.4"`
}

type SessionConfig struct {
	Store         string        `envconfig:"SESSION_STORE" default:"memory"` // "memory" or "redis"
	TTL           time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
}

type DatabaseConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"memory"` // "mongodb" or "memory"
	URI      string `envconfig:"DATABASE_URL"`
	Name     string `envconfig:"DB_NAME" default:"medbot"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"27017"`
	Username string `envconfig:"DB_USERNAME"`
	Password string `envconfig:"DB_PASSWORD"`

	// Connection pool settings
	MaxConnections int           `envconfig:"DB_MAX_CONNECTIONS" default:"100"`
	MinConnections int           `envconfig:"DB_MIN_CONNECTIONS" default:"10"`
	MaxIdleTime    time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"30m"`
}

type ReceiptConfig struct {
	Store string `envconfig:"RECEIPT_STORE" default:"local"` // "local" or "s3"
	Dir   string `envconfig:"RECEIPT_DIR" default:"./receipts"`

	// S3 Config
	BucketName      string `envconfig:"S3_BUCKET_NAME"`
	Prefix          string `envconfig:"S3_PREFIX" default:"receipts/"`
	Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
}

type AIConfig struct {
	APIKey  string        `envconfig:"GOOGLE_API_KEY"`
	Model   string        `envconfig:"AI_MODEL" default:"gemini-1.5-flash"`
	Timeout time.Duration `envconfig:"AI_TIMEOUT" default:"30s"`
}

type WhatsAppConfig struct {
	AccessToken   string `envconfig:"WHATSAPP_ACCESS_TOKEN"`
	PhoneNumberID string `envconfig:"WHATSAPP_PHONE_NUMBER_ID"`
	VerifyToken   string `envconfig:"WHATSAPP_VERIFY_TOKEN"`
	AppSecret     string `envconfig:"WHATSAPP_APP_SECRET"`
	APIVersion    string `envconfig:"WHATSAPP_API_VERSION" default:"v18.0"`
	PublicURL     string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
}

var cfg *Config

// Load reads .env (if present) and the environment into the package config.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	c, err := FromEnv()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// FromEnv builds a validated Config from the current environment only.
func FromEnv() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Wrap(err, "failed to process environment variables")
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &c, nil
}

// Get returns the loaded configuration
func Get() *Config {
	if cfg == nil {
		log.Fatal().Msg("Configuration not loaded. Call Load() first")
	}
	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AIEnabled reports whether an LLM key is configured.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != ""
}

// WhatsAppEnabled reports whether the WhatsApp channel can send messages.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsApp.AccessToken != "" && c.WhatsApp.PhoneNumberID != "" && c.WhatsApp.VerifyToken != ""
}

func (c *Config) Validate() error {
	switch c.Catalog.ResolverStrategy {
	case "rules":
	case "classifier":
		if c.AI.APIKey == "" {
			return errors.New("classifier resolver strategy requires GOOGLE_API_KEY")
		}
	default:
		return errors.Errorf("unsupported resolver strategy: %s", c.Catalog.ResolverStrategy)
	}

	if c.Catalog.FuzzyCutoff <= 0 || c.Catalog.FuzzyCutoff > 1 {
		return errors.Errorf("fuzzy cutoff must be in (0, 1], got %v", c.Catalog.FuzzyCutoff)
	}

	switch c.Session.Store {
	case "memory", "redis":
	default:
		return errors.Errorf("unsupported session store: %s", c.Session.Store)
	}

	switch c.Database.Type {
	case "memory":
	case "mongodb":
		if c.Database.URI == "" && (c.Database.Host == "" || c.Database.Port == "") {
			return errors.New("database URI or host/port must be provided")
		}
	default:
		return errors.Errorf("unsupported database type: %s", c.Database.Type)
	}

	switch c.Receipt.Store {
	case "local":
		if c.Receipt.Dir == "" {
			return errors.New("receipt directory is required for local receipt store")
		}
	case "s3":
		if c.Receipt.BucketName == "" {
			return errors.New("S3 bucket is required for s3 receipt store")
		}
	default:
		return errors.Errorf("unsupported receipt store: %s", c.Receipt.Store)
	}

	return nil
}

// BuildDatabaseURI constructs the database URI if not provided
func (c *Config) BuildDatabaseURI() string {
	if c.Database.URI != "" {
		return c.Database.URI
	}

	if c.Database.Username != "" && c.Database.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}
