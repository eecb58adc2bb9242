// Package config reads the service settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Addr    string
	TLSCert string
	TLSKey  string
	// MaterialsFile replaces the embedded material table when set.
	MaterialsFile  string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxSamples     int
	JobTTL         time.Duration
	JobWorkers     int
	LogLevel       zapcore.Level
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		MaxSamples:     1_000_000,
		JobTTL:         15 * time.Minute,
		JobWorkers:     2,
		LogLevel:       zapcore.InfoLevel,
	}
}

// Load reads envFile (if it exists) into the process environment and then
// builds the Config from the environment over Default.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	c := Default()
	if err := c.fromEnv(); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) fromEnv() error {
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	c.TLSCert = os.Getenv("TLS_CERT")
	c.TLSKey = os.Getenv("TLS_KEY")
	c.MaterialsFile = os.Getenv("MATERIALS_FILE")

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	for _, e := range []struct {
		key string
		dst *int
	}{
		{"RATE_LIMIT_BURST", &c.RateLimitBurst},
		{"MAX_SAMPLES", &c.MaxSamples},
		{"JOB_WORKERS", &c.JobWorkers},
	} {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	if v := os.Getenv("JOB_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JOB_TTL: %w", err)
		}
		c.JobTTL = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := zapcore.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
		c.LogLevel = lvl
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("ADDR must not be empty")
	case (c.TLSCert == "") != (c.TLSKey == ""):
		return errors.New("TLS_CERT and TLS_KEY must be set together")
	case c.RateLimitRPS <= 0:
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %g", c.RateLimitRPS)
	case c.RateLimitBurst < 1:
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	case c.MaxSamples < 1:
		return fmt.Errorf("MAX_SAMPLES must be positive, got %d", c.MaxSamples)
	case c.JobTTL <= 0:
		return fmt.Errorf("JOB_TTL must be positive, got %s", c.JobTTL)
	case c.JobWorkers < 1:
		return fmt.Errorf("JOB_WORKERS must be at least 1, got %d", c.JobWorkers)
	}
	return nil
}

// TLS reports whether the server should listen with TLS.
func (c Config) TLS() bool {
	return c.TLSCert != ""
}
