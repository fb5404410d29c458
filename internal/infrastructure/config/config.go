package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// MinSecretLength is the shortest JWT secret accepted without a warning.
const MinSecretLength = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Admin AdminConfig

	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,  default=1h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
	// RoleCacheTTL > 0 lets the admin guard serve roles from Redis for up to
	// this long. Zero keeps the store lookup on every admin request.
	RoleCacheTTL time.Duration `env:"ROLE_CACHE_TTL, default=0s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_manager"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=false"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// AdminConfig holds the optional bootstrap admin account.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Warnings lists settings that are accepted but unsafe or inconsistent.
func (c *Config) Warnings() []string {
	var out []string
	if len(c.Auth.JWTSecret) < MinSecretLength {
		out = append(out, fmt.Sprintf("JWT_SECRET is shorter than %d bytes", MinSecretLength))
	}
	if c.Auth.RoleCacheTTL > 0 && !c.Redis.Enabled {
		out = append(out, "ROLE_CACHE_TTL is set but REDIS_ENABLED is false; role cache disabled")
	}
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		out = append(out, "ADMIN_USERNAME and ADMIN_PASSWORD must both be set; admin bootstrap skipped")
	}
	return out
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
