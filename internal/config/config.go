package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// MinSigningKeyLength is the HS256 recommended key size in bytes.
const MinSigningKeyLength = 32

// KDFConfig holds the PBKDF2 parameters used to derive password verifiers.
type KDFConfig struct {
	Iterations int `mapstructure:"KDF_ITERATIONS"`
	SaltLength int `mapstructure:"KDF_SALT_LENGTH"`
	KeyLength  int `mapstructure:"KDF_KEY_LENGTH"`
}

// TokenConfig holds the signing key and claims used for session tokens.
type TokenConfig struct {
	Secret string `mapstructure:"JWT_SECRET"`
	Issuer string `mapstructure:"JWT_ISSUER"`
	// Zero means tokens carry no exp claim and stay valid until the secret is rotated.
	TTL time.Duration `mapstructure:"TOKEN_TTL"`
}

type RedisSettings struct {
	Address  string
	Password string
	DB       int
}

type Config struct {
	// Server port
	Port     string
	AppEnv   string
	LogLevel string
	// memory, sqlite or redis
	StorageDriver string
	// file:accounts.db?cache=shared&_fk=1
	DatabaseDSN      string
	RedisSettings    RedisSettings
	CORSAllowOrigins []string
	Token            TokenConfig
	KDF              KDFConfig
}

// Defaults for anything not set through .env or the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("DATABASE_DSN", "file:accounts.db?cache=shared&_fk=1")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("JWT_ISSUER", "instaclone-auth")
	v.SetDefault("TOKEN_TTL", "0s")
	v.SetDefault("KDF_ITERATIONS", 310000)
	v.SetDefault("KDF_SALT_LENGTH", 16)
	v.SetDefault("KDF_KEY_LENGTH", 32)
}

// LoadConfig reads .env from the working directory or ./config, then the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Info().Msg("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		Port:          v.GetString("APP_PORT"),
		AppEnv:        v.GetString("APP_ENV"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		RedisSettings: RedisSettings{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		Token: TokenConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
			TTL:    v.GetDuration("TOKEN_TTL"),
		},
		KDF: KDFConfig{
			Iterations: v.GetInt("KDF_ITERATIONS"),
			SaltLength: v.GetInt("KDF_SALT_LENGTH"),
			KeyLength:  v.GetInt("KDF_KEY_LENGTH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Token.TTL == 0 {
		log.Warn().Msg("TOKEN_TTL is 0: session tokens never expire until JWT_SECRET is rotated")
	}
	return cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if len(c.Token.Secret) < MinSigningKeyLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", MinSigningKeyLength, len(c.Token.Secret))
	}
	if c.Token.TTL < 0 {
		return fmt.Errorf("TOKEN_TTL must not be negative, got %s", c.Token.TTL)
	}
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite, StorageRedis:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
