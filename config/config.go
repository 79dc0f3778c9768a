package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"food-storefront/kv"
	"food-storefront/lifecycle"
	"food-storefront/pricing"
	"food-storefront/store"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Auth      AuthConfig       `yaml:"auth"`
	Storage   kv.Config        `yaml:"storage"`
	Pricing   pricing.Config   `yaml:"pricing"`
	Lifecycle []lifecycle.Step `yaml:"lifecycle" validate:"dive"`
	Store     StoreConfig      `yaml:"store"`
	Log       LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Port    string `yaml:"port" validate:"required,numeric"`
	GinMode string `yaml:"gin_mode" validate:"oneof=debug release test"`
}

type AuthConfig struct {
	// JWTSecret signs session tokens; read from env or fallback
	JWTSecret  string        `yaml:"jwt_secret" validate:"required,min=16"`
	TokenTTL   time.Duration `yaml:"token_ttl" validate:"gt=0"`
	BcryptCost int           `yaml:"bcrypt_cost" validate:"gte=4,lte=31"`
}

type StoreConfig struct {
	AdminLimit     int           `yaml:"admin_limit" validate:"gte=1"`
	DeliveryWindow time.Duration `yaml:"delivery_window" validate:"gt=0"`
	SeedDemoUser   bool          `yaml:"seed_demo_user"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Default is the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080", GinMode: "debug"},
		Auth: AuthConfig{
			JWTSecret:  "food_storefront_super_secret_2024",
			TokenTTL:   72 * time.Hour,
			BcryptCost: bcrypt.DefaultCost,
		},
		Storage: kv.Config{
			Driver:    kv.DriverSQLite,
			DSN:       "food_storefront.db",
			Namespace: "food-storefront:",
		},
		Pricing:   pricing.DefaultConfig(),
		Lifecycle: lifecycle.DefaultSchedule(),
		Store: StoreConfig{
			AdminLimit:     store.DefaultAdminLimit,
			DeliveryWindow: 30 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then a .env file in the working directory, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env is optional; variables already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.GinMode = getEnv("GIN_MODE", cfg.Server.GinMode)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Storage.Driver = getEnv("STORE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DSN = getEnv("STORE_DSN", cfg.Storage.DSN)
	cfg.Storage.RedisURL = getEnv("REDIS_URL", cfg.Storage.RedisURL)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	if v := getEnv("SEED_DEMO_USER", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEED_DEMO_USER: %w", err)
		}
		cfg.Store.SeedDemoUser = b
	}
	return nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := lifecycle.ValidateSchedule(cfg.Lifecycle); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
