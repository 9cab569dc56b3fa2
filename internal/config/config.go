// Package config loads the runtime configuration from defaults, a YAML file, a .env file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Duplicate title policies. Both keep the later price, "warn" also logs it.
const (
	DuplicatesIgnore = "ignore"
	DuplicatesWarn   = "warn"
)

type Config struct {
	HTTPServer struct {
		Port    int `koanf:"port"`
		Timeout struct {
			Read   time.Duration `koanf:"read"`
			Write  time.Duration `koanf:"write"`
			Idle   time.Duration `koanf:"idle"`
			Header time.Duration `koanf:"header"`
		} `koanf:"timeout"`
	} `koanf:"server"`

	GRPC struct {
		Port              string `koanf:"port"`
		ReflectionEnabled bool   `koanf:"reflection"`
	} `koanf:"grpc"`

	Database struct {
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"database"`

	Catalog struct {
		Duplicates string `koanf:"duplicates"`
	} `koanf:"catalog"`

	Report struct {
		Format string `koanf:"format"`
	} `koanf:"report"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Shutdown struct {
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"shutdown"`
}

func (c Config) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("server.port=%d, server.timeout.read=%v, server.timeout.write=%v, server.timeout.idle=%v, server.timeout.header=%v, ",
		c.HTTPServer.Port,
		c.HTTPServer.Timeout.Read,
		c.HTTPServer.Timeout.Write,
		c.HTTPServer.Timeout.Idle,
		c.HTTPServer.Timeout.Header))
	b.WriteString(fmt.Sprintf("grpc.port=%s, grpc.reflection=%t, database.timeout=%v, catalog.duplicates=%s, report.format=%s, log.level=%s, shutdown.timeout=%v.",
		c.GRPC.Port,
		c.GRPC.ReflectionEnabled,
		c.Database.Timeout,
		c.Catalog.Duplicates,
		c.Report.Format,
		c.Log.Level,
		c.Shutdown.Timeout))
	return b.String()
}

// WarnDuplicates reports whether repeated catalog titles should be logged.
func (c Config) WarnDuplicates() bool {
	return c.Catalog.Duplicates == DuplicatesWarn
}

const (
	envPrefix      = "SALES_"
	defaultEnvFile = ".env"
	configFile     = "config.yaml"
)

func defaults() map[string]any {
	return map[string]any{
		"server.port":           8080,
		"server.timeout.read":   "5s",
		"server.timeout.write":  "10s",
		"server.timeout.idle":   "60s",
		"server.timeout.header": "2s",
		"grpc.port":             "9090",
		"grpc.reflection":       false,
		"database.timeout":      "5s",
		"catalog.duplicates":    DuplicatesWarn,
		"report.format":         FormatText,
		"log.level":             "info",
		"shutdown.timeout":      "15s",
	}
}

// Load reads the configuration from config.yaml, .env and environment variables
// and validates the settings shared by every command.
func Load() (*Config, error) {
	return load(configFile, defaultEnvFile)
}

func load(yamlFile, envFile string) (*Config, error) {
	// Create a new Koanf instance
	var k = koanf.New(".")

	// 1. Defaults, the lowest priority
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. Load configuration from yaml file
	if err := k.Load(file.Provider(yamlFile), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading YAML config: %w", err)
		}
	}

	// 3. Load environment variables from .env file
	if envFileMap, err := godotenv.Read(envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if strings.HasPrefix(key, envPrefix) {
				envMap[keyTransformer(key)] = value
			}
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", keyTransformer), nil); err != nil {
		log.Printf("WARN: error loading env vars: %v", err)
	}

	var cfg Config
	// 5. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings used by both the command line tool and the service.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	if c.Report.Format != FormatText && c.Report.Format != FormatJSON {
		return fmt.Errorf("invalid report format: %q", c.Report.Format)
	}
	if c.Catalog.Duplicates != DuplicatesIgnore && c.Catalog.Duplicates != DuplicatesWarn {
		return fmt.Errorf("invalid catalog duplicates policy: %q", c.Catalog.Duplicates)
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("invalid database timeout: %v", c.Database.Timeout)
	}
	return nil
}

// ValidateServer checks the settings only the service needs.
func (c *Config) ValidateServer() error {
	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.HTTPServer.Port)
	}
	if c.HTTPServer.Timeout.Read <= 0 {
		return fmt.Errorf("invalid HTTP server read timeout: %v", c.HTTPServer.Timeout.Read)
	}
	if c.HTTPServer.Timeout.Write <= 0 {
		return fmt.Errorf("invalid HTTP server write timeout: %v", c.HTTPServer.Timeout.Write)
	}
	if c.HTTPServer.Timeout.Idle <= 0 {
		return fmt.Errorf("invalid HTTP server idle timeout: %v", c.HTTPServer.Timeout.Idle)
	}
	if c.HTTPServer.Timeout.Header <= 0 {
		return fmt.Errorf("invalid HTTP server read header timeout: %v", c.HTTPServer.Timeout.Header)
	}
	if c.GRPC.Port == "" {
		return fmt.Errorf("gRPC port is not configured")
	}
	if c.Shutdown.Timeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", c.Shutdown.Timeout)
	}
	return nil
}

// keyTransformer maps SALES_LOG_LEVEL to log.level.
func keyTransformer(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
	return strings.ReplaceAll(key, "_", ".")
}
