package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	VK       VK       `yaml:"vk"`
	Telegram Telegram `yaml:"telegram"`
	Dedup    Dedup    `yaml:"dedup"`
	Redis    Redis    `yaml:"redis"`
	Postgres Postgres `yaml:"postgres"`
	Kafka    Kafka    `yaml:"kafka"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"vk-telegram-relay"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type VK struct {
	Token        string `yaml:"token" env:"VK_TOKEN"`
	Version      string `yaml:"version" env:"VK_API_VERSION" env-default:"5.199"`
	APIBase      string `yaml:"api_base" env:"VK_API_BASE" env-default:"https://api.vk.com/method"`
	GroupID      int64  `yaml:"group_id" env:"VK_GROUP_ID"`
	Confirmation string `yaml:"confirmation" env:"VK_CONFIRMATION"`
	Secret       string `yaml:"secret" env:"VK_SECRET"`
}

type Telegram struct {
	Token       string `yaml:"token" env:"TG_TOKEN"`
	APIBase     string `yaml:"api_base" env:"TG_API_BASE" env-default:"https://api.telegram.org"`
	ChatID      int64  `yaml:"chat_id" env:"TG_CHAT_ID"`
	DebugChatID int64  `yaml:"debug_chat_id" env:"TG_DEBUG_CHAT_ID"`
}

// Dedup holds the two duplicate-suppression horizons. EventTTL collapses
// rapid webhook re-deliveries in-process; PostTTL guards against the platform
// re-sending the same post hours later and survives restarts via Redis.
type Dedup struct {
	EventTTL time.Duration `yaml:"event_ttl" env:"DEDUP_EVENT_TTL" env-default:"10m"`
	PostTTL  time.Duration `yaml:"post_ttl" env:"DEDUP_POST_TTL" env-default:"168h"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"relay_db"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"relay-audit"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
