package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/jwtx"
	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	Env                  string        `env:"ENV"                   envDefault:"dev"`  // dev, staging, prod
	LogLevel             string        `env:"LOG_LEVEL"             envDefault:"info"` // debug, info, warn, error
	LogFormat            string        `env:"LOG_FORMAT"            envDefault:"json"` // json, text
	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	StoreDriver   string `env:"STORE_DRIVER"   envDefault:"sqlite"`
	DatabaseFile  string `env:"DATABASE_FILE"  envDefault:"groups.db"`
	MongoURI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017/?replicaSet=rs0"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"docket"`

	// Bearer tokens are issued by the identity service and share this secret.
	JWTSecret string `env:"JWT_SECRET,required,unset"`
	JWTIssuer string `env:"JWT_ISSUER"                envDefault:"docket-identity"`

	InviteTTL     time.Duration `env:"INVITE_TTL"      envDefault:"48h"`
	InviteMaxUses int           `env:"INVITE_MAX_USES" envDefault:"1"` // -1 for unlimited
	InvitePolicy  string        `env:"INVITE_POLICY"   envDefault:"members"`

	ActivityRetention time.Duration `env:"ACTIVITY_RETENTION" envDefault:"720h"`

	EventsRedisAddr   string        `env:"EVENTS_REDIS_ADDR"` // Optional: Redis stream sink is off when empty
	EventsRedisStream string        `env:"EVENTS_REDIS_STREAM" envDefault:"docket:events"`
	EventsTimeout     time.Duration `env:"EVENTS_TIMEOUT"      envDefault:"5s"`
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverMongo, c.StoreDriver))
	}

	if len(c.JWTSecret) < jwtx.MinSecretSize {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinSecretSize))
	}
	if c.InviteTTL <= 0 {
		errs = append(errs, errors.New("INVITE_TTL must be positive"))
	}
	if !domain.ValidMaxUses(c.InviteMaxUses) {
		errs = append(errs, fmt.Errorf("INVITE_MAX_USES must be positive or %d", domain.UnlimitedUses))
	}
	if _, err := service.ParseInvitePolicy(c.InvitePolicy); err != nil {
		errs = append(errs, fmt.Errorf("INVITE_POLICY: %w", err))
	}

	return errors.Join(errs...)
}
