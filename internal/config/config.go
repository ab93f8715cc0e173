package config

import (
	"os"

	"cardroom-server/internal/util"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the cardroom server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	Log struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	Redis struct {
		Addr string `yaml:"addr"`
		// SnapshotTTLMinutes bounds how long an abandoned round snapshot lives
		SnapshotTTLMinutes int `yaml:"snapshotTtlMinutes" envconfig:"snapshot_ttl_minutes"`
	}
	Kafka struct {
		Brokers string `yaml:"brokers"`
		Topic   string `yaml:"topic"`
	}
	Betting struct {
		// MinBet is the opening BBING amount
		MinBet int `yaml:"minBet" envconfig:"min_bet"`
		// RaiseCap is the per-user raise limit per betting round
		RaiseCap int `yaml:"raiseCap" envconfig:"raise_cap"`
		// TableLimit is the chip ceiling for one betting round
		TableLimit int `yaml:"tableLimit" envconfig:"table_limit"`
	}
}

var config Config

// DefaultConfig returns the configuration defaults
func DefaultConfig() Config {
	var cfg Config
	cfg.MigrationsPath = "./sql"
	cfg.Redis.SnapshotTTLMinutes = 60
	cfg.Kafka.Topic = "cardroom.round-events"
	cfg.Betting.MinBet = 10
	cfg.Betting.RaiseCap = 3
	cfg.Betting.TableLimit = 10000
	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error; defaults and environment overrides apply
func Load() error {
	config = DefaultConfig()

	configFile := util.Getenv("CARDROOM_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer func() { _ = file.Close() }()

		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("cardroom", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
