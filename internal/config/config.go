package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"ivfit-app/internal/util"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type ServerConfig struct {
	Address           string `toml:"address"`
	ReadTimeoutMs     int    `toml:"read_timeout_ms"`
	WriteTimeoutMs    int    `toml:"write_timeout_ms"`
	IdleTimeoutMs     int    `toml:"idle_timeout_ms"`
	ShutdownTimeoutMs int    `toml:"shutdown_timeout_ms"`
}

type StoreConfig struct {
	Type string `toml:"type"`
	DSN  string `toml:"dsn"`
}

type LogConfig struct {
	Folder  string `toml:"folder"`
	File    string `toml:"file"`
	Level   string `toml:"level"`
	Console bool   `toml:"console"`
	Rewrite bool   `toml:"rewrite"`
}

type ChartConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type MQTTConfig struct {
	Enabled  bool   `toml:"enabled"`
	Server   string `toml:"server"`
	ClientID string `toml:"client_id"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Topic    string `toml:"topic"`
	QoS      int    `toml:"qos"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
	Chart  ChartConfig  `toml:"chart"`
	MQTT   MQTTConfig   `toml:"mqtt"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:           "0.0.0.0:5000",
			ReadTimeoutMs:     5000,
			WriteTimeoutMs:    10000,
			IdleTimeoutMs:     120000,
			ShutdownTimeoutMs: 25000,
		},
		Store: StoreConfig{
			Type: StoreMemory,
		},
		Log: LogConfig{
			Folder:  ".." + string(os.PathSeparator) + "log",
			File:    "webService.log",
			Level:   "info",
			Console: true,
		},
		Chart: ChartConfig{
			Width:  600,
			Height: 400,
		},
		MQTT: MQTTConfig{
			Server:   "tcp://localhost:1883",
			ClientID: "ivfit-app",
			Topic:    "ivfit/readings",
			QoS:      1,
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	if err := Decode(f, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Decode rejects keys that do not map onto Config.
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()

	err := dec.Decode(cfg)
	var details *toml.StrictMissingError
	if errors.As(err, &details) {
		return fmt.Errorf("unknown configuration options in file: %w: %s", err, details.String())
	}
	return err
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address must not be empty")
	}
	if c.Server.ReadTimeoutMs <= 0 || c.Server.WriteTimeoutMs <= 0 || c.Server.IdleTimeoutMs <= 0 {
		return errors.New("server timeouts must be > 0")
	}
	if c.Server.ShutdownTimeoutMs <= 0 {
		return errors.New("server.shutdown_timeout_ms must be > 0")
	}

	switch c.Store.Type {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}

	if _, err := util.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return errors.New("chart width and height must be > 0")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Server == "" || c.MQTT.Topic == "" {
			return errors.New("mqtt.server and mqtt.topic are required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
	}
	return nil
}
