// Package config describes the service settings and loads them from a YAML file.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every setting of the learning platform service.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Auth                    `yaml:"auth"`
	RabbitMQ                `yaml:"rabbitmq"`
	Wallet                  `yaml:"wallet"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer configures the public HTTP listener.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection configures the redis client used for catalog caching.
type RedisConnection struct {
	RedisAddress     string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	RedisPassword    string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser        string        `yaml:"user"`
	RedisDB          int           `yaml:"db"`
	RedisMaxRetries  int           `yaml:"max_retries"`
	RedisDialTimeout time.Duration `yaml:"dial_timeout"`
	RedisTimeout     time.Duration `yaml:"timeoutredis"`
	PackagesTTL      time.Duration `yaml:"packages_ttl" env-default:"5m"`
}

// Auth holds the parameters needed to verify session tokens issued by the
// external authentication provider.
type Auth struct {
	JWTSecretKey string `yaml:"jwt_secret_key" env:"AUTH_JWT_SECRET" env-required:"true"`
	Issuer       string `yaml:"issuer" env:"AUTH_ISSUER"`
}

// RabbitMQ configures the broker purchase events are published to.
// An empty URL disables publishing.
type RabbitMQ struct {
	RabbitURL     string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitRetries int           `yaml:"retries" env-default:"5"`
	RabbitDelay   time.Duration `yaml:"delay" env-default:"2s"`
}

// Wallet selects the operator account credited by paid purchases.
type Wallet struct {
	PrimaryAdminID string `yaml:"primary_admin_id" env:"WALLET_PRIMARY_ADMIN_ID"`
}

// RateLimit configures the per-client request limiter.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env-default:"5"`
	Burst             int     `yaml:"burst" env-default:"10"`
}

// MustLoad reads the file named by CONFIG_PATH and exits the process on failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return &cfg, nil
}

// String renders the config for debug logs with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  PackagesTTL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Auth:\n"+
			"  Issuer: %s\n"+
			"  JWTSecretKey: %s\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"Wallet:\n"+
			"  PrimaryAdminID: %s\n",
		c.Env,
		c.MigrationsPath,
		c.RedisAddress,
		c.RedisDB,
		c.PackagesTTL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Issuer,
		mask(c.JWTSecretKey),
		c.RabbitURL != "",
		c.PrimaryAdminID,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
