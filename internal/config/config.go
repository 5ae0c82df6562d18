package config

import (
	"flag"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"os"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Env        string   `yaml:"env" env:"ENV" env-default:"local"`
	Storage    string   `yaml:"storage" env:"STORAGE" env-default:"postgres"`
	Database   Database `yaml:"database"`
	Redis      Redis    `yaml:"redis"`
	Booking    Booking  `yaml:"booking"`
	HTTPServer `yaml:"http_server"`
}

type Database struct {
	Host           string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password       string `yaml:"password" env:"DB_PASSWORD"`
	DBName         string `yaml:"dbname" env:"DB_NAME" env-default:"shareit"`
	SSLMode        string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
}

// Redis caches user lookups. An empty address disables the cache.
type Redis struct {
	Address string        `yaml:"address" env:"REDIS_ADDRESS"`
	UserTTL time.Duration `yaml:"user_ttl" env:"REDIS_USER_TTL" env-default:"10m"`
}

type Booking struct {
	RejectOverlaps bool `yaml:"reject_overlaps" env:"BOOKING_REJECT_OVERLAPS" env-default:"false"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

func MustLoad() *Config {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	return &cfg, nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
