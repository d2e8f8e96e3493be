package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/QuentinCody/intuit-mcp-server/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// EnvFile is a dotenv file loaded into the process environment before
	// reading variables. Defaults to ".env"; a missing file is not an error.
	EnvFile string

	// ConfigFile is an optional YAML file providing base values. Environment
	// variables always take precedence over file values.
	ConfigFile string
}

// Load builds a Config from an optional YAML file and the process
// environment, then validates it. Precedence, lowest to highest:
// YAML file, dotenv file, real environment variables.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overwrites variables that are already set, so the real
	// environment wins over the dotenv file.
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
		logging.Debug("ConfigLoader", "No env file at %s, using process environment only", envFile)
	} else {
		logging.Debug("ConfigLoader", "Loaded environment from %s", envFile)
	}

	var cfg Config
	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file %s: %w", opts.ConfigFile, err)
			}
			logging.Info("ConfigLoader", "No config file at %s, using environment only", opts.ConfigFile)
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file %s: %w", opts.ConfigFile, err)
			}
			logging.Info("ConfigLoader", "Loaded configuration from %s", opts.ConfigFile)
		}
	}

	applyEnv(&cfg)

	env, err := ParseEnvironment(string(cfg.Environment))
	if err != nil {
		return nil, err
	}
	cfg.Environment = env

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overlays environment variables onto cfg. Empty variables leave
// file-provided values in place.
func applyEnv(cfg *Config) {
	if v := os.Getenv("INTUIT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("INTUIT_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv("INTUIT_REFRESH_TOKEN"); v != "" {
		cfg.RefreshToken = v
	}
	if v := os.Getenv("INTUIT_ENVIRONMENT"); v != "" {
		cfg.Environment = Environment(v)
	}
	if v := os.Getenv("INTUIT_COMPANY_ID"); v != "" {
		cfg.CompanyID = v
	}
}
