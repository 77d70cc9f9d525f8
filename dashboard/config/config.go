/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package config loads the litviz dashboard's configuration.
//
// Values are layered: defaults, then an optional YAML file, then LITVIZ_*
// environment variables (LITVIZ_DATA_ROOT sets data_root).  List values in
// the environment are comma-separated.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	geoheatmap "github.com/ilhamster/litviz/geo_heat_map"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "LITVIZ_"

// Config is the dashboard configuration.
type Config struct {
	Port int `yaml:"port" koanf:"port"`
	// DataRoot is the directory datasets are read from.  Ignored if BaseURL
	// is set.
	DataRoot string `yaml:"data_root" koanf:"data_root"`
	// BaseURL, if set, is the URL datasets are fetched from.
	BaseURL        string   `yaml:"base_url" koanf:"base_url"`
	CacheSize      int      `yaml:"cache_size" koanf:"cache_size"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	LogLevel       string   `yaml:"log_level" koanf:"log_level"`
	LogFormat      string   `yaml:"log_format" koanf:"log_format"`
	// TopologyObject names the region object of the map topology.
	TopologyObject  string   `yaml:"topology_object" koanf:"topology_object"`
	ExcludedRegions []string `yaml:"excluded_regions" koanf:"excluded_regions"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Port:            7410,
		DataRoot:        "data",
		CacheSize:       16,
		AllowedOrigins:  []string{"*"},
		LogLevel:        "info",
		LogFormat:       "text",
		TopologyObject:  geoheatmap.DefaultObject,
		ExcludedRegions: append([]string(nil), geoheatmap.DefaultExcluded...),
	}
}

var listKeys = map[string]bool{
	"allowed_origins":  true,
	"excluded_regions": true,
}

// LoadDotEnv loads environment variables from the provided .env files,
// skipping any that do not exist.  Variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the configuration from the YAML file at path, if it exists,
// overlays environment overrides, and validates the result.  An empty path
// skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if listKeys[key] {
			parts := strings.Split(value, ",")
			for idx := range parts {
				parts[idx] = strings.TrimSpace(parts[idx])
			}
			return key, parts
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the YAML file at path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DataRoot == "" && c.BaseURL == "" {
		return fmt.Errorf("one of data_root or base_url is required")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive")
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("invalid log_format %q: must be one of text, json", c.LogFormat)
	}
	if c.TopologyObject == "" {
		return fmt.Errorf("topology_object is required")
	}
	return nil
}
