package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const defaultConfigPath = "src/internal/config/cfg.yml"

type Configuration struct {
	Logs     LogsSettings     `mapstructure:"logs"`
	App      Application      `mapstructure:"app"`
	Database Database         `mapstructure:"database"`
	Queue    QueueConfig      `mapstructure:"queue"`
	Redis    Redis            `mapstructure:"redis"`
	Security SecuritySettings `mapstructure:"security"`
	Session  SessionSettings  `mapstructure:"session"`
	Server   ServerSettings   `mapstructure:"server"`
	Search   SearchConfig     `mapstructure:"search"`
	Cache    CacheConfig      `mapstructure:"cache"`
	Storage  StorageConfig    `mapstructure:"storage"`
}

type LogsSettings struct {
	Level            string `mapstructure:"level"`
	Path             string `mapstructure:"log-path"`
	EnableJSONOutput bool   `mapstructure:"enable-json-output"`
}

type Application struct {
	Name     string `mapstructure:"name"`
	Timeout  int    `mapstructure:"timeout"`
	Version  string `mapstructure:"version"`
	HostLink string `mapstructure:"host-link"`
}

type Database struct {
	Url            string `mapstructure:"url"`
	DbName         string `mapstructure:"dbname"`
	BlogCollection string `mapstructure:"blog-collection"`
	TagCollection  string `mapstructure:"tag-collection"`
	Timeout        int    `mapstructure:"timeout"`
}

type SearchConfig struct {
	DefaultPageSize int `mapstructure:"default-page-size"`
	MaxPageSize     int `mapstructure:"max-page-size"`
	FeaturedLimit   int `mapstructure:"featured-limit"`
	RelatedLimit    int `mapstructure:"related-limit"`
}

type QueueConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Url          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange-type"`
	RoutingKey   string `mapstructure:"routing-key"`
	Durable      bool   `mapstructure:"durable"`
	AutoDelete   bool   `mapstructure:"auto-delete"`
	Internal     bool   `mapstructure:"internal"`
	NoWait       bool   `mapstructure:"no-wait"`
}

type Redis struct {
	Url      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

// SecuritySettings holds the deployment-supplied admin credentials.
type SecuritySettings struct {
	AdminEmail        string `mapstructure:"admin-email"`
	AdminPassword     string `mapstructure:"admin-password"`
	SessionSigningKey string `mapstructure:"session-signing-key"`
}

type SessionSettings struct {
	// Backend is one of "cookie", "redis" or "memory".
	Backend string `mapstructure:"backend"`
	// Codec is one of "json" or "jwt".
	Codec            string `mapstructure:"codec"`
	CookieMaxAgeDays int    `mapstructure:"cookie-max-age-days"`
	LoginPath        string `mapstructure:"login-path"`
	LandingPath      string `mapstructure:"landing-path"`
}

type ServerSettings struct {
	Port            string `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`
	ReadTimeout     int    `mapstructure:"read-timeout"`
	WriteTimeout    int    `mapstructure:"write-timeout"`
	IdleTimeout     int    `mapstructure:"idle-timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown-timeout"`
}

type CacheConfig struct {
	TagsKey                string `mapstructure:"tags-key"`
	TagsExpirationMinutes  int    `mapstructure:"tags-expiration-minutes"`
	StatsKey               string `mapstructure:"stats-key"`
	StatsExpirationMinutes int    `mapstructure:"stats-expiration-minutes"`
}

type StorageConfig struct {
	// Provider is one of "local" or "s3".
	Provider    string       `mapstructure:"provider"`
	MaxUploadMB int          `mapstructure:"max-upload-mb"`
	Local       LocalStorage `mapstructure:"local"`
	S3          S3Storage    `mapstructure:"s3"`
}

type LocalStorage struct {
	Path    string `mapstructure:"path"`
	BaseURL string `mapstructure:"base-url"`
}

type S3Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`
	PublicURL       string `mapstructure:"public-url"`
}

func Load() *Configuration {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg := read(path)
	logrus.Info("Configuration loaded")

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Panic("Invalid configuration")
	}

	return cfg
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Configuration) {
	overrideString(&cfg.Database.Url, "MONGODB_URL")
	overrideString(&cfg.Database.DbName, "DB_NAME")
	overrideString(&cfg.Redis.Url, "REDIS_URL")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideString(&cfg.Queue.RabbitMQ.Url, "RABBITMQ_URL")
	overrideString(&cfg.Security.AdminEmail, "ADMIN_EMAIL")
	overrideString(&cfg.Security.AdminPassword, "ADMIN_PASSWORD")
	overrideString(&cfg.Security.SessionSigningKey, "SESSION_SIGNING_KEY")
	overrideString(&cfg.Session.Backend, "SESSION_BACKEND")
	overrideString(&cfg.Session.Codec, "SESSION_CODEC")
	overrideString(&cfg.Server.Port, "PORT")
	overrideString(&cfg.Storage.Provider, "STORAGE_PROVIDER")
	overrideString(&cfg.Storage.S3.Endpoint, "S3_ENDPOINT")
	overrideString(&cfg.Storage.S3.Bucket, "S3_BUCKET")
	overrideString(&cfg.Storage.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	overrideString(&cfg.Storage.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	overrideString(&cfg.Storage.S3.PublicURL, "S3_PUBLIC_URL")

	redisDB := os.Getenv("REDIS_DB")
	if redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.Db = db
		}
	}
}

func overrideString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

// Validate checks settings the service cannot start without.
func (c *Configuration) Validate() error {
	if c.Security.AdminEmail == "" || c.Security.AdminPassword == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	switch c.Session.Backend {
	case "cookie", "memory":
	case "redis":
		if c.Redis.Url == "" {
			return errors.New("redis url is required when session backend is 'redis'")
		}
	default:
		return fmt.Errorf("session backend must be 'cookie', 'redis' or 'memory', got: %s", c.Session.Backend)
	}

	switch c.Session.Codec {
	case "json":
	case "jwt":
		if c.Security.SessionSigningKey == "" {
			return errors.New("SESSION_SIGNING_KEY is required when session codec is 'jwt'")
		}
	default:
		return fmt.Errorf("session codec must be 'json' or 'jwt', got: %s", c.Session.Codec)
	}

	switch c.Storage.Provider {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required when storage provider is 's3'")
		}
		if c.Storage.S3.AccessKeyID == "" || c.Storage.S3.SecretAccessKey == "" {
			return errors.New("S3 credentials are required when storage provider is 's3'")
		}
	default:
		return fmt.Errorf("storage provider must be 'local' or 's3', got: %s", c.Storage.Provider)
	}

	return nil
}

func read(path string) *Configuration {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetConfigType("yml")

	var config Configuration

	err := viper.ReadInConfig()
	if err != nil {
		logrus.Panicf("Error reading config file, %s", err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		logrus.Panicf("Error unmarshalling config file, %s", err)
	}

	return &config
}
