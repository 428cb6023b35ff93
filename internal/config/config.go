package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration, read from the environment with an
// optional .env file.
type Config struct {
	APIBaseURL    string
	APIToken      string
	ParticipantID int

	NATSUrl       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PollInterval time.Duration
	GatewayPort  string
}

// Load reads configuration, loading .env first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := Config{
		APIBaseURL:    getEnv("ARENA_API_URL", "http://localhost:8000"),
		APIToken:      getEnv("ARENA_API_TOKEN", ""),
		ParticipantID: getEnvAsInt("ARENA_PARTICIPANT_ID", 0),
		NATSUrl:       getEnv("NATS_URL", "nats://localhost:4222"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		PollInterval:  time.Duration(getEnvAsInt("POLL_INTERVAL_SECONDS", 5)) * time.Second,
		GatewayPort:   getEnv("GATEWAY_PORT", "8081"),
	}

	if cfg.ParticipantID <= 0 {
		return Config{}, fmt.Errorf("ARENA_PARTICIPANT_ID must be set")
	}
	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	return cfg, nil
}

// GatewayTunables are the WebSocket timeouts, loadable from a YAML file for
// deployments that need non-default values.
type GatewayTunables struct {
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

func DefaultGatewayTunables() GatewayTunables {
	return GatewayTunables{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 1024,
	}
}

// LoadGatewayTunables reads tunables from path, filling unset fields with
// defaults. A missing file returns defaults.
func LoadGatewayTunables(path string) (GatewayTunables, error) {
	t := DefaultGatewayTunables()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("read gateway tunables: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse gateway tunables: %w", err)
	}
	if t.WriteTimeout <= 0 || t.ReadTimeout <= 0 || t.PingInterval <= 0 {
		return t, fmt.Errorf("gateway tunables: timeouts must be positive")
	}
	return t, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Msg("invalid integer env value, using default")
		return defaultValue
	}
	return value
}
