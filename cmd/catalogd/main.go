// Gray Logic Catalog - sensor and actuator catalog service
//
// The catalog daemon keeps the registry of sensors and actuators attached to
// building devices. It persists them to SQLite or Redis, samples sensor
// readings on an interval and applies actuator commands received over MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/nerrad567/gray-logic-catalog/internal/audit"
	"github.com/nerrad567/gray-logic-catalog/internal/catalog"
	"github.com/nerrad567/gray-logic-catalog/internal/device"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-catalog/internal/provision"
	"github.com/nerrad567/gray-logic-catalog/internal/telemetry"
	"github.com/nerrad567/gray-logic-catalog/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gray Logic Catalog",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	deviceRegistry := device.NewRegistry(device.NewSQLiteRepository(db.DB))
	deviceRegistry.SetLogger(log.Component("device"))
	if refreshErr := deviceRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", deviceRegistry.GetDeviceCount())

	sensors, actuators, closeStore, err := openRecordStores(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("opening %s record store: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			log.Error("error closing record store", "error", closeErr)
		}
	}()
	log.Info("record store ready", "backend", cfg.Storage.Backend)

	svc := catalog.NewService(catalog.NewModelRegistry(), sensors, actuators, deviceRegistry)
	svc.SetLogger(log.Component("catalog"))
	if refreshErr := svc.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading catalog: %w", refreshErr)
	}
	stats := svc.GetStats()
	log.Info("catalog initialised",
		"models", len(svc.Registry().Models()),
		"types", len(svc.Registry().Types()),
		"sensors", stats.ByKind[catalog.KindSensor],
		"actuators", stats.ByKind[catalog.KindActuator],
	)

	auditTrail := audit.NewSQLiteRepository(db.DB)

	if cfg.Provisioning.File != "" {
		if provErr := applyInventory(ctx, cfg.Provisioning.File, deviceRegistry, svc, auditTrail, log); provErr != nil {
			return fmt.Errorf("provisioning: %w", provErr)
		}
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected, paho will retry", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	if cfg.Telemetry.SamplerEnabled {
		sampler := newSampler(cfg, svc, db, mqttClient, influxClient)
		sampler.SetLogger(log.Component("sampler"))
		sampler.Start(ctx)
		defer func() {
			log.Info("stopping sampler")
			sampler.Stop()
		}()
		log.Info("sampler started", "interval", cfg.GetSampleInterval())
	}

	if cfg.Telemetry.CommandsEnabled {
		commands := telemetry.NewCommandHandler(svc, mqttClient, mqttClient.QoS())
		commands.SetLogger(log.Component("commands"))
		commands.SetAuditor(auditTrail)
		if subErr := commands.Subscribe(mqttClient); subErr != nil {
			return fmt.Errorf("subscribing to actuator commands: %w", subErr)
		}
		defer func() {
			if unsubErr := mqttClient.Unsubscribe(mqtt.Topics{}.AllActuatorCommands()); unsubErr != nil {
				log.Warn("unsubscribing actuator commands", "error", unsubErr)
			}
		}()
		log.Info("actuator command handler subscribed", "topic", mqtt.Topics{}.AllActuatorCommands())
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: sampler, InfluxDB, MQTT,
	// record store, database.
	log.Info("Gray Logic Catalog stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openRecordStores returns the sensor and actuator repositories for the
// configured backend and a function that releases them.
func openRecordStores(ctx context.Context, cfg *config.Config, db *database.DB) (sensors, actuators catalog.Repository, closeFn func() error, err error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("pinging redis: %w", pingErr)
		}
		sensors = catalog.NewRedisRepository(client, cfg.Redis.KeyPrefix+":"+string(catalog.TableSensors))
		actuators = catalog.NewRedisRepository(client, cfg.Redis.KeyPrefix+":"+string(catalog.TableActuators))
		return sensors, actuators, client.Close, nil
	default:
		sensors = catalog.NewSQLiteRepository(db.DB, catalog.TableSensors)
		actuators = catalog.NewSQLiteRepository(db.DB, catalog.TableActuators)
		return sensors, actuators, func() error { return nil }, nil
	}
}

// applyInventory loads the provisioning file and creates anything missing.
func applyInventory(ctx context.Context, path string, devices provision.DeviceStore, cat provision.Catalog, trail audit.Recorder, log *logging.Logger) error {
	inv, err := provision.LoadInventory(path)
	if err != nil {
		return err
	}
	p := provision.New(devices, cat)
	p.SetLogger(log.Component("provision"))
	p.SetAuditor(trail)

	res, err := p.Apply(ctx, inv)
	if err != nil {
		return err
	}
	log.Info("inventory provisioned",
		"path", path,
		"devices_created", res.DevicesCreated,
		"sensors_created", res.SensorsCreated,
		"actuators_created", res.ActuatorsCreated,
	)
	return nil
}

// newSampler wires the sampler to whichever outputs are enabled. Disabled
// outputs stay nil interfaces so the sampler skips them.
func newSampler(cfg *config.Config, svc *catalog.Service, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) *telemetry.Sampler {
	samplerCfg := telemetry.SamplerConfig{
		Sensors:   svc,
		Store:     telemetry.NewSQLiteReadingStore(db.DB),
		Interval:  cfg.GetSampleInterval(),
		Retention: cfg.GetRetention(),
	}
	if mqttClient != nil {
		samplerCfg.Publisher = mqttClient
		samplerCfg.QoS = mqttClient.QoS()
	}
	if influxClient != nil {
		samplerCfg.Metrics = influxClient
	}
	return telemetry.NewSampler(samplerCfg)
}

// healthCheck verifies every enabled connection is healthy.
// mqttClient and influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
