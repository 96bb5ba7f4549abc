package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "TOKO_CONFIG_FILE"

// Config is the service configuration. Every key can be set in the optional
// YAML file or overridden by the upper-case environment variable of the same name.
type Config struct {
	AppPort          string        `mapstructure:"app_port"`
	LogLevel         string        `mapstructure:"log_level"`
	LogPretty        bool          `mapstructure:"log_pretty"`
	DatabaseDriver   string        `mapstructure:"database_driver"`
	DatabaseDSN      string        `mapstructure:"database_dsn"`
	JWTSecret        string        `mapstructure:"jwt_secret"`
	TokenTTL         time.Duration `mapstructure:"token_ttl"`
	RabbitMQURL      string        `mapstructure:"rabbitmq_url"`
	RabbitMQExchange string        `mapstructure:"rabbitmq_exchange"`
	RabbitMQQueue    string        `mapstructure:"rabbitmq_queue"`
	AdminUsername    string        `mapstructure:"admin_username"`
	AdminEmail       string        `mapstructure:"admin_email"`
	AdminPassword    string        `mapstructure:"admin_password"`
	Currency         string        `mapstructure:"currency"`
	SeedDemo         bool          `mapstructure:"seed_demo"`
}

var defaults = map[string]interface{}{
	"app_port":          ":8080",
	"log_level":         "info",
	"log_pretty":        false,
	"database_driver":   "sqlite",
	"database_dsn":      "file:toko.db?cache=shared",
	"jwt_secret":        "change-me",
	"token_ttl":         24 * time.Hour,
	"rabbitmq_url":      "",
	"rabbitmq_exchange": "products",
	"rabbitmq_queue":    "product_audit",
	"admin_username":    "admin",
	"admin_email":       "admin@example.com",
	"admin_password":    "",
	"currency":          "usd",
	"seed_demo":         false,
}

// Load reads the configuration from defaults, the config file named by the
// --config flag or TOKO_CONFIG_FILE, and the environment.
func Load(args []string) (Config, error) {
	return load(viper.New(), configFilepath(args))
}

func load(v *viper.Viper, path string) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database_driver: unsupported driver %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database_dsn: required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret: required"))
	}
	return errors.Join(errs...)
}

func configFilepath(args []string) string {
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env
	}
	if len(args) == 0 {
		return ""
	}
	cmdLine := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	path := cmdLine.String("config", "", "path to a YAML config file")
	_ = cmdLine.Parse(args[1:])
	return *path
}
