// Package config loads the payroll service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OBuskas/ananaPayroll/internal/payroll/controller"
	"github.com/OBuskas/ananaPayroll/internal/payroll/db"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable that overrides DefaultPath.
const PathEnv = "CONFIG_PATH"

var DefaultPath = filepath.Join("internal", "payroll", "config", "config.yaml")

const (
	defaultTopic   = "payroll-events"
	defaultGroupID = "payroll-indexer"
)

// Config struct for YAML configuration
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`

	DBDriver   string `yaml:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`
	SQLitePath string `yaml:"SQLITE_PATH"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`
	GroupID      string   `yaml:"KAFKA_GROUP_ID"`

	JWTSecret string `yaml:"JWT_SECRET"`

	VaultAddress      string `yaml:"VAULT_ADDRESS"`
	VaultOwner        string `yaml:"VAULT_OWNER"`
	ManagerAddress    string `yaml:"MANAGER_ADDRESS"`
	TokenDecimals     uint8  `yaml:"TOKEN_DECIMALS"`
	TokenMinter       string `yaml:"TOKEN_MINTER"`
	RequireAcceptance bool   `yaml:"PAYROLL_REQUIRE_ACCEPTANCE"`
}

// Path returns the config file location, honouring CONFIG_PATH.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads, defaults and validates the file at path. JWT_SECRET and
// DB_PASSWORD from the environment take precedence over the file.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(file)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DBPassword = v
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBDriver == "" {
		c.DBDriver = string(db.Postgres)
	}
	if c.Topic == "" {
		c.Topic = defaultTopic
	}
	if c.GroupID == "" {
		c.GroupID = defaultGroupID
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.GRPCPort <= 0 {
		errs = append(errs, errors.New("GRPC_PORT must be set"))
	}
	if c.HTTPPort <= 0 {
		errs = append(errs, errors.New("HTTP_PORT must be set"))
	}
	switch db.Driver(c.DBDriver) {
	case db.Postgres:
		if c.DBHost == "" || c.DBName == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres"))
		}
	case db.SQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	for key, v := range map[string]string{
		"VAULT_ADDRESS":   c.VaultAddress,
		"VAULT_OWNER":     c.VaultOwner,
		"MANAGER_ADDRESS": c.ManagerAddress,
	} {
		if !common.IsHexAddress(v) {
			errs = append(errs, fmt.Errorf("%s %q is not a hex address", key, v))
		}
	}
	if c.TokenMinter != "" && !common.IsHexAddress(c.TokenMinter) {
		errs = append(errs, fmt.Errorf("TOKEN_MINTER %q is not a hex address", c.TokenMinter))
	}
	if c.TokenDecimals > 18 {
		errs = append(errs, fmt.Errorf("TOKEN_DECIMALS %d exceeds 18", c.TokenDecimals))
	}
	return errors.Join(errs...)
}

// Database returns the repository settings.
func (c *Config) Database() *db.Config {
	return &db.Config{
		Driver:     db.Driver(c.DBDriver),
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SSLMode:    c.DBSSLMode,
		SQLitePath: c.SQLitePath,
	}
}

// LedgerOptions returns the ledger wiring. An empty TOKEN_MINTER disables minting.
func (c *Config) LedgerOptions() controller.Options {
	opts := controller.Options{
		TokenDecimals:     c.TokenDecimals,
		VaultOwner:        common.HexToAddress(c.VaultOwner),
		VaultAddress:      common.HexToAddress(c.VaultAddress),
		ManagerAddress:    common.HexToAddress(c.ManagerAddress),
		RequireAcceptance: c.RequireAcceptance,
	}
	if c.TokenMinter != "" {
		opts.TokenMinter = common.HexToAddress(c.TokenMinter)
	}
	return opts
}
