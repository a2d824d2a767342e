package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for sensor and actuator records.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config is the catalog service configuration, loaded by Load.
type Config struct {
	Site         SiteConfig         `yaml:"site"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Redis        RedisConfig        `yaml:"redis"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	InfluxDB     InfluxDBConfig     `yaml:"influxdb"`
	Logging      LoggingConfig      `yaml:"logging"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
// Devices and readings always live in SQLite.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// StorageConfig selects where sensor and actuator records are kept.
type StorageConfig struct {
	// Backend is "sqlite" (default) or "redis".
	Backend string `yaml:"backend"`
}

// RedisConfig contains Redis connection settings for the redis backend.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TelemetryConfig controls sensor sampling and actuator command handling.
type TelemetryConfig struct {
	// SamplerEnabled turns on periodic sensor sampling.
	SamplerEnabled bool `yaml:"sampler_enabled"`

	// SampleInterval is the sampling period in seconds.
	SampleInterval int `yaml:"sample_interval"`

	// CommandsEnabled subscribes to actuator command topics.
	CommandsEnabled bool `yaml:"commands_enabled"`

	// RetentionDays is how long readings are kept. 0 keeps them forever.
	RetentionDays int `yaml:"retention_days"`
}

// ProvisioningConfig points at the inventory file applied on startup.
type ProvisioningConfig struct {
	// File is the path to the YAML inventory. Empty disables provisioning.
	File string `yaml:"file"`
}

// Load builds a Config from defaults, then the YAML file at path, then
// GRAYLOGIC_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Site:     SiteConfig{ID: "site-001", Name: "Gray Logic", Timezone: "UTC"},
		Database: DatabaseConfig{Path: "./data/graylogic.db", WALMode: true, BusyTimeout: 5},
		Storage:  StorageConfig{Backend: StorageSQLite},
		Redis:    RedisConfig{Addr: "localhost:6379", KeyPrefix: "graylogic:catalog"},
		MQTT: MQTTConfig{
			Enabled:   true,
			Broker:    MQTTBrokerConfig{Host: "localhost", Port: 1883, ClientID: "graylogic-catalog"},
			QoS:       1,
			Reconnect: MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 60},
		},
		InfluxDB: InfluxDBConfig{BatchSize: 100, FlushInterval: 10},
		Logging:  LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		Telemetry: TelemetryConfig{
			SamplerEnabled:  true,
			SampleInterval:  60,
			CommandsEnabled: true,
			RetentionDays:   30,
		},
	}
}

// envOverrides maps GRAYLOGIC_* variables onto config fields. Unset or
// empty variables leave the field alone.
var envOverrides = []struct {
	name  string
	apply func(*Config, string)
}{
	{"GRAYLOGIC_DATABASE_PATH", func(c *Config, v string) { c.Database.Path = v }},
	{"GRAYLOGIC_STORAGE_BACKEND", func(c *Config, v string) { c.Storage.Backend = v }},
	{"GRAYLOGIC_REDIS_ADDR", func(c *Config, v string) { c.Redis.Addr = v }},
	{"GRAYLOGIC_REDIS_PASSWORD", func(c *Config, v string) { c.Redis.Password = v }},
	{"GRAYLOGIC_REDIS_DB", func(c *Config, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}},
	{"GRAYLOGIC_MQTT_HOST", func(c *Config, v string) { c.MQTT.Broker.Host = v }},
	{"GRAYLOGIC_MQTT_USERNAME", func(c *Config, v string) { c.MQTT.Auth.Username = v }},
	{"GRAYLOGIC_MQTT_PASSWORD", func(c *Config, v string) { c.MQTT.Auth.Password = v }},
	{"GRAYLOGIC_INFLUXDB_URL", func(c *Config, v string) { c.InfluxDB.URL = v }},
	{"GRAYLOGIC_INFLUXDB_TOKEN", func(c *Config, v string) { c.InfluxDB.Token = v }},
	{"GRAYLOGIC_LOG_LEVEL", func(c *Config, v string) { c.Logging.Level = v }},
	{"GRAYLOGIC_PROVISIONING_FILE", func(c *Config, v string) { c.Provisioning.File = v }},
}

func applyEnvOverrides(cfg *Config) {
	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			o.apply(cfg, v)
		}
	}
}

// Validate reports every problem it finds in one error.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	switch c.Storage.Backend {
	case StorageSQLite:
	case StorageRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, "redis.addr is required when storage.backend is redis")
		}
		if c.Redis.KeyPrefix == "" {
			errs = append(errs, "redis.key_prefix is required when storage.backend is redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.backend must be %q or %q", StorageSQLite, StorageRedis))
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Telemetry.CommandsEnabled && !c.MQTT.Enabled {
		errs = append(errs, "telemetry.commands_enabled requires mqtt.enabled")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Telemetry.SamplerEnabled && c.Telemetry.SampleInterval < 1 {
		errs = append(errs, "telemetry.sample_interval must be at least 1 second")
	}
	if c.Telemetry.RetentionDays < 0 {
		errs = append(errs, "telemetry.retention_days must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetSampleInterval returns the sensor sampling period as a Duration.
func (c *Config) GetSampleInterval() time.Duration {
	return time.Duration(c.Telemetry.SampleInterval) * time.Second
}

// GetRetention returns the readings retention as a Duration. Zero means
// readings are never pruned.
func (c *Config) GetRetention() time.Duration {
	return time.Duration(c.Telemetry.RetentionDays) * 24 * time.Hour
}
