package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied once by Load.
const (
	EnvAPIURL     = "AGVDASH_API_URL"
	EnvChannelURL = "AGVDASH_CHANNEL_URL"
	EnvAPIToken   = "AGVDASH_API_TOKEN"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Backend  BackendConfig  `yaml:"backend"`
	Channel  ChannelConfig  `yaml:"channel"`
	Database DatabaseConfig `yaml:"database"`
	Web      WebConfig      `yaml:"web"`
	Alerts   AlertsConfig   `yaml:"alerts"`
}

type BackendConfig struct {
	APIURL     string        `yaml:"api_url"`
	ChannelURL string        `yaml:"channel_url"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
}

type ChannelConfig struct {
	Transport string      `yaml:"transport"` // websocket, mqtt, kafka, redis
	MQTT      MQTTConfig  `yaml:"mqtt"`
	Kafka     KafkaConfig `yaml:"kafka"`
	Redis     RedisConfig `yaml:"redis"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	Port        int    `yaml:"port"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	TopicPrefix string `yaml:"topic_prefix"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	Partition     int      `yaml:"partition"`
	Username      string   `yaml:"username"`
	EventsTopic   string   `yaml:"events_topic"`
	CommandsTopic string   `yaml:"commands_topic"`
}

type RedisConfig struct {
	Address       string `yaml:"address"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

type AlertsConfig struct {
	LowBatteryThreshold float64 `yaml:"low_battery_threshold"`
}

func Defaults() *Config {
	return &Config{
		Backend: BackendConfig{
			APIURL:     "http://localhost:8080/api/v1",
			ChannelURL: "ws://localhost:8080/ws",
			Timeout:    30 * time.Second,
		},
		Channel: ChannelConfig{
			Transport: "websocket",
			MQTT: MQTTConfig{
				Broker:      "localhost",
				Port:        1883,
				ClientID:    "agvdash",
				TopicPrefix: "fleet",
			},
			Kafka: KafkaConfig{
				Brokers:       []string{"localhost:9092"},
				EventsTopic:   "fleet.events",
				CommandsTopic: "fleet.commands",
			},
			Redis: RedisConfig{
				Address:       "localhost:6379",
				ChannelPrefix: "fleet",
			},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "agvdash.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "agvdash",
				User:     "agvdash",
				SSLMode:  "disable",
			},
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8084,
			SessionSecret: "change-me-in-production",
		},
		Alerts: AlertsConfig{
			LowBatteryThreshold: 20,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.Backend.APIURL = v
	}
	if v := getenv(EnvChannelURL); v != "" {
		c.Backend.ChannelURL = v
	}
	if v := getenv(EnvAPIToken); v != "" {
		c.Backend.Token = v
	}
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Lock()   { c.mu.Lock() }
func (c *Config) Unlock() { c.mu.Unlock() }
