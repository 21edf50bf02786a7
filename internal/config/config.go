package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Store      StoreConfig      `yaml:"store"`
	SigningKey SigningKeyConfig `yaml:"signing_key"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // memory | file | sqlite | postgres
	Path   string `yaml:"path"`   // file driver
	DSN    string `yaml:"dsn"`    // sqlite and postgres drivers
}

type SigningKeyConfig struct {
	KeyID          string `yaml:"key_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
}

// Default is the configuration used when no -config flag is given:
// an unsigned JSONL trail in the working directory.
func Default() Config {
	return Config{Store: StoreConfig{Driver: "file", Path: "jtrail_trace.jsonl"}}
}

func Load(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "file":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required when store.driver=file")
		}
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required when store.driver=%s", c.Store.Driver)
		}
	case "":
		return fmt.Errorf("store.driver is required")
	default:
		return fmt.Errorf("unsupported store.driver: %s", c.Store.Driver)
	}

	if c.SigningKey.PrivateKeyPath != "" && c.SigningKey.KeyID == "" {
		return fmt.Errorf("signing_key.key_id is required when signing_key.private_key_path is set")
	}

	return nil
}
