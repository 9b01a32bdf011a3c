package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ivfit-app/internal/config"
	"ivfit-app/internal/domain"
	"ivfit-app/internal/metrics"
	"ivfit-app/internal/repository"
	"ivfit-app/internal/router"
	"ivfit-app/internal/subscriber"
	"ivfit-app/internal/util"
)

func LoggerInitialize(cfg config.LogConfig) (*util.ServiceLogger, error) {
	level, err := util.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	logger := &util.ServiceLogger{}
	if err := logger.Init(util.LogSettings{
		Folder:  cfg.Folder,
		File:    cfg.File,
		Level:   level,
		Console: cfg.Console,
		Rewrite: cfg.Rewrite,
	}); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		return nil, err
	}

	logger.LogEvent(util.LOG_LEVEL_INFO, "Service started")

	currentTime := time.Now().Format(time.RFC3339)

	fmt.Fprintf(os.Stderr, "\n%s: IV fit service started \n", currentTime)

	return logger, nil
}

func newStore(cfg config.StoreConfig) (domain.ReadingStore, error) {
	switch cfg.Type {
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil
	case config.StoreSQLite:
		return repository.NewSQLiteStore(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.Server.Address, _ = flags.GetString("address")
	}
	if flags.Changed("store") {
		cfg.Store.Type, _ = flags.GetString("store")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("mqtt") {
		cfg.MQTT.Enabled, _ = flags.GetBool("mqtt")
	}
	if flags.Changed("mqtt-server") {
		cfg.MQTT.Server, _ = flags.GetString("mqtt-server")
	}
	if flags.Changed("mqtt-topic") {
		cfg.MQTT.Topic, _ = flags.GetString("mqtt-topic")
	}

	return cfg, cfg.Validate()
}

func RunServerCmdF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := LoggerInitialize(cfg.Log)
	if err != nil {
		return fmt.Errorf("error while initializing the logger: %w", err)
	}
	defer logger.DeInit()

	readingStore, err := newStore(cfg.Store)
	if err != nil {
		return err
	}
	if err := readingStore.Init(); err != nil {
		log.Fatalf("Failed to initialize reading store: %v", err)
	}
	defer readingStore.Close()

	m := metrics.NewMetrics()

	if cfg.MQTT.Enabled {
		sub := subscriber.NewMQTT(cfg.MQTT, readingStore, logger, m)
		if err := sub.Start(); err != nil {
			return err
		}
		defer sub.Stop()
		logger.LogEvent(util.LOG_LEVEL_INFO, "MQTT ingestion enabled on", cfg.MQTT.Server)
	}

	return router.Run(cfg, readingStore, logger, m)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ivfit",
		Short:        "Collect current/voltage readings and plot their linear fit",
		SilenceUsage: true,
		RunE:         RunServerCmdF,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to TOML config file")
	rootCmd.PersistentFlags().StringP("address", "a", "0.0.0.0:5000", "Address to listen on")
	rootCmd.PersistentFlags().String("store", config.StoreMemory, "Reading store: memory|sqlite")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: error|warn|info|debug")
	rootCmd.PersistentFlags().Bool("mqtt", false, "Also ingest readings from MQTT")
	rootCmd.PersistentFlags().String("mqtt-server", "tcp://localhost:1883", "MQTT broker (tcp://host:port)")
	rootCmd.PersistentFlags().String("mqtt-topic", "ivfit/readings", "MQTT topic carrying readings")
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
