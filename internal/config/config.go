// Package config resolves casectl settings from, in increasing precedence:
// built-in defaults, a YAML/JSON config file, a dotenv file, and CASECTL_*
// environment variables. Flags override all of it at the command layer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"casectl/internal/console"
	"casectl/internal/store"
)

// DefaultDir is the per-workspace state directory.
const DefaultDir = ".casectl"

// Config holds everything the CLI needs to reach and talk to the backend.
type Config struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`
	APIKeyFile     string `json:"api_key_file" yaml:"api_key_file"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	TopK           int    `json:"top_k" yaml:"top_k"`
	DBPath         string `json:"db_path" yaml:"db_path"`
	LogLevel       string `json:"log_level" yaml:"log_level"`
	LogFormat      string `json:"log_format" yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:        "http://localhost:8000",
		TimeoutSeconds: 60,
		TopK:           console.DefaultTopK,
		DBPath:         store.DefaultDBPath,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load parses a config from bytes. ext is the file extension (e.g. ".json",
// ".yaml") as a format hint; empty = detect from content.
func Load(data []byte, ext string) (*Config, error) {
	c := Default()
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	switch ext {
	case ".yaml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
		return c, nil
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
		return c, nil
	}
	// Detect: JSON starts with {, everything else is YAML.
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
		return c, nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return c, nil
}

// LoadFromPath reads a config file (YAML or JSON) from path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Resolve builds the effective configuration. explicitPath, when non-empty,
// must exist; otherwise .casectl/config.yaml or config.json is used when
// present. A .casectl/.env dotenv file and CASECTL_* environment variables
// overlay the file in that order.
func Resolve(explicitPath string) (*Config, error) {
	var c *Config
	switch {
	case explicitPath != "":
		loaded, err := LoadFromPath(explicitPath)
		if err != nil {
			return nil, err
		}
		c = loaded
	default:
		c = Default()
		for _, candidate := range []string{
			filepath.Join(DefaultDir, "config.yaml"),
			filepath.Join(DefaultDir, "config.yml"),
			filepath.Join(DefaultDir, "config.json"),
		} {
			loaded, err := LoadFromPath(candidate)
			if err == nil {
				c = loaded
				break
			}
			if !os.IsNotExist(unwrapPathError(err)) {
				return nil, err
			}
		}
	}

	kv, err := LoadDotEnv(filepath.Join(DefaultDir, ".env"))
	if err != nil {
		return nil, err
	}
	c.applyKV(func(key string) (string, bool) {
		v, ok := kv[key]
		return v, ok
	})
	c.applyKV(os.LookupEnv)
	return c, nil
}

func unwrapPathError(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := u.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}

// applyKV overlays CASECTL_* keys from the given lookup.
func (c *Config) applyKV(lookup func(string) (string, bool)) {
	if v, ok := lookup("CASECTL_BASE_URL"); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup("CASECTL_API_KEY_FILE"); ok && v != "" {
		c.APIKeyFile = v
	}
	if v, ok := lookup("CASECTL_TIMEOUT_SECONDS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutSeconds = n
		}
	}
	if v, ok := lookup("CASECTL_TOP_K"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TopK = n
		}
	}
	if v, ok := lookup("CASECTL_DB"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup("CASECTL_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("CASECTL_LOG_FORMAT"); ok && v != "" {
		c.LogFormat = v
	}
}
