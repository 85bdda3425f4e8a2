package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Address             string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabaseConnection  string        `env:"DATABASE_URI"`
	JWTSecret           string        `env:"JWT_SECRET"`
	JWTTTL              time.Duration `env:"JWT_TTL" envDefault:"24h"`
	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"1m"`
	NotifyRadiusKm      float64       `env:"NOTIFY_RADIUS_KM" envDefault:"20"`
	NotifyWorkers       int           `env:"NOTIFY_WORKERS" envDefault:"8"`
	Timezone            string        `env:"TIMEZONE" envDefault:"Asia/Colombo"`
	KafkaBrokers        []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic          string        `env:"KAFKA_NOTIFICATIONS_TOPIC" envDefault:"foodflow.notifications"`
}

func NewConfig(args []string) (*Config, error) {
	// .env is optional; real environment wins over it
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("foodflow", flag.ContinueOnError)
	address := fs.String("a", cfg.Address, "{Host:port} for server")
	loglevel := fs.String("l", cfg.LogLevel, "Log level for server")
	databaseConnection := fs.String("d", cfg.DatabaseConnection, "Database connection string")
	jwtTTL := fs.Duration("t", cfg.JWTTTL, "TTL for JWT token(e.g. 24h; 30m )")
	sweep := fs.Duration("s", cfg.ExpirySweepInterval, "Expiry sweep interval")
	radius := fs.Float64("r", cfg.NotifyRadiusKm, "Notification radius in km")
	workers := fs.Int("w", cfg.NotifyWorkers, "Notification fan-out workers")
	tz := fs.String("z", cfg.Timezone, "Zone for timestamps without offset")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.DatabaseConnection = *databaseConnection
	cfg.JWTTTL = *jwtTTL
	cfg.ExpirySweepInterval = *sweep
	cfg.NotifyRadiusKm = *radius
	cfg.NotifyWorkers = *workers
	cfg.Timezone = *tz

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ENV JWT_SECRET must be set")
	}
	if cfg.ExpirySweepInterval <= 0 {
		return nil, fmt.Errorf("expiry sweep interval must be positive, got %s", cfg.ExpirySweepInterval)
	}

	return cfg, nil
}
