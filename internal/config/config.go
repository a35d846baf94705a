package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis    `yaml:"redis"`
	Presence Presence `yaml:"presence"`
	Janitor  Janitor  `yaml:"janitor"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Presence tunes opponent disconnect detection.
type Presence struct {
	HeartbeatTimeout time.Duration `yaml:"heartbeat-timeout" env:"PRESENCE_HEARTBEAT_TIMEOUT" env-default:"10s"`
	PollInterval     time.Duration `yaml:"poll-interval" env:"PRESENCE_POLL_INTERVAL" env-default:"3s"`
	GracePeriod      time.Duration `yaml:"grace-period" env:"PRESENCE_GRACE_PERIOD" env-default:"5s"`
}

type Janitor struct {
	Secret  string        `yaml:"secret" env:"CRON_SECRET"`
	RoomTTL time.Duration `yaml:"room-ttl" env:"JANITOR_ROOM_TTL" env-default:"1h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
