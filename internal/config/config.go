package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

var (
	ErrInvalidChance  = errors.New("random move chance must be within [0, 1]")
	ErrInvalidDelay   = errors.New("think delay range is invalid")
	ErrInvalidStorage = errors.New("unknown storage driver")
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	StorageDriver     string        `yaml:"storage-driver" env:"STORAGE_DRIVER" env-default:"redis"`
	SQLiteStoragePath string        `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"sessions.db"`
	SessionTTL        time.Duration `yaml:"session-ttl" env:"SESSION_TTL"`
	Redis             Redis         `yaml:"redis"`
	Bot               Bot           `yaml:"bot"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Bot struct {
	RandomMoveChance    float64       `yaml:"random-move-chance" env:"BOT_RANDOM_MOVE_CHANCE"`
	RandomMoveThreshold int           `yaml:"random-move-threshold" env:"BOT_RANDOM_MOVE_THRESHOLD"`
	ThinkDelayMin       time.Duration `yaml:"think-delay-min" env:"BOT_THINK_DELAY_MIN"`
	ThinkDelayMax       time.Duration `yaml:"think-delay-max" env:"BOT_THINK_DELAY_MAX"`
	Seed                int64         `yaml:"seed" env:"BOT_SEED" env-default:"0"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Defaults - settings where zero is a meaningful value. cleanenv replaces zero
// fields that carry env-default, so these are filled before the file is read.
func Defaults() *Config {
	return &Config{
		SessionTTL: 24 * time.Hour,
		Bot: Bot{
			RandomMoveChance:    0.3,
			RandomMoveThreshold: 6,
			ThinkDelayMin:       500 * time.Millisecond,
			ThinkDelayMax:       1500 * time.Millisecond,
		},
	}
}

func Load(path string) (*Config, error) {
	config := Defaults()

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	if that.Bot.RandomMoveChance < 0 || that.Bot.RandomMoveChance > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidChance, that.Bot.RandomMoveChance)
	}

	if that.Bot.RandomMoveThreshold < 0 {
		return fmt.Errorf("random move threshold must not be negative: %d", that.Bot.RandomMoveThreshold)
	}

	if that.Bot.ThinkDelayMin < 0 || that.Bot.ThinkDelayMin > that.Bot.ThinkDelayMax {
		return fmt.Errorf("%w: %s..%s", ErrInvalidDelay, that.Bot.ThinkDelayMin, that.Bot.ThinkDelayMax)
	}

	switch that.StorageDriver {
	case StorageRedis, StorageSQLite, StorageMemory:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorage, that.StorageDriver)
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
