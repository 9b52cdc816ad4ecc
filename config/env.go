package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment override variables.
const (
	EnvLogLevel       = "FLOTSYNC_LOG_LEVEL"
	EnvPrometheusAddr = "FLOTSYNC_PROMETHEUS_ADDR"
)

// Functions

// ApplyEnv reads the supplied .env file and applies the deployment
// specific overrides it defines on top of the parsed config. This enables
// host adaptions without needing to maintain two different config files.
func (c *Config) ApplyEnv(envFile string) error {

	err := godotenv.Load(envFile)
	if err != nil {
		return errors.Wrapf(err, "failed to read in env file at '%s'", envFile)
	}

	c.applyEnvValues()

	return nil
}

// applyEnvValues copies set override variables from the process
// environment into the config.
func (c *Config) applyEnvValues() {

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}

	if v := os.Getenv(EnvPrometheusAddr); v != "" {
		c.PrometheusAddr = v
	}
}
