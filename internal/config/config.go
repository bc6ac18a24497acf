// Package config loads service settings from defaults, an optional YAML
// file, an optional .env file and CATALOG_* environment variables, in that
// order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix = "CATALOG_"

	DefaultConfigFile = "config.yaml"
	DefaultEnvFile    = ".env"
)

var ErrNoAPIKey = errors.New("auth.apikey or auth.apikeyhash must be set")

type Config struct {
	Server struct {
		Port              int           `koanf:"port" validate:"min=1,max=65535"`
		ReadHeaderTimeout time.Duration `koanf:"readheadertimeout" validate:"gt=0"`
		ShutdownTimeout   time.Duration `koanf:"shutdowntimeout" validate:"gt=0"`
	} `koanf:"server"`

	Auth struct {
		APIKey     string `koanf:"apikey"`
		APIKeyHash string `koanf:"apikeyhash"`
	} `koanf:"auth"`

	Log struct {
		Level string `koanf:"level" validate:"oneof=debug info warn error"`
	} `koanf:"log"`

	Metrics struct {
		Enabled bool   `koanf:"enabled"`
		Token   string `koanf:"token"`
	} `koanf:"metrics"`
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// String is safe to log: secrets are masked.
func (c Config) String() string {
	return fmt.Sprintf("server.port=%d server.readheadertimeout=%v server.shutdowntimeout=%v auth.apikey=%s auth.apikeyhash=%s log.level=%s metrics.enabled=%t metrics.token=%s",
		c.Server.Port,
		c.Server.ReadHeaderTimeout,
		c.Server.ShutdownTimeout,
		mask(c.Auth.APIKey),
		mask(c.Auth.APIKeyHash),
		c.Log.Level,
		c.Metrics.Enabled,
		mask(c.Metrics.Token),
	)
}

func mask(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":              3000,
		"server.readheadertimeout": "5s",
		"server.shutdowntimeout":   "10s",
		"log.level":                "info",
		"metrics.enabled":          false,
	}
}

type Sources struct {
	ConfigFile string
	EnvFile    string
}

// Load reads the default sources relative to the working directory.
func Load() (*Config, error) {
	return LoadFrom(Sources{ConfigFile: DefaultConfigFile, EnvFile: DefaultEnvFile})
}

// LoadFrom is Load with explicit file locations. Missing files are skipped.
func LoadFrom(src Sources) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if src.ConfigFile != "" {
		if err := k.Load(file.Provider(src.ConfigFile), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", src.ConfigFile, err)
		}
	}

	if src.EnvFile != "" {
		envFile, err := godotenv.Read(src.EnvFile)
		switch {
		case err == nil:
			m := make(map[string]any, len(envFile))
			for key, value := range envFile {
				if strings.HasPrefix(strings.ToUpper(key), EnvPrefix) {
					m[keyFromEnv(key)] = value
				}
			}
			if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
				return nil, fmt.Errorf("load %s: %w", src.EnvFile, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", src.EnvFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", keyFromEnv), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Auth.APIKey == "" && c.Auth.APIKeyHash == "" {
		return ErrNoAPIKey
	}
	return nil
}

// keyFromEnv maps CATALOG_SERVER_PORT to server.port.
func keyFromEnv(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(key, "_", ".")
}
