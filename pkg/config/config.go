// Package config loads application settings from YAML files and exposes them
// both as a raw map for dotted-key lookups and as a typed Settings struct.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Settings is the typed view of an application configuration file.
type Settings struct {
	Name   string `mapstructure:"name"`
	Server struct {
		Addr            string        `mapstructure:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	Dispatcher struct {
		RecursionLimit int `mapstructure:"recursion_limit"`
	} `mapstructure:"dispatcher"`
	Session struct {
		Store  string        `mapstructure:"store"`
		Addr   string        `mapstructure:"addr"`
		Expiry time.Duration `mapstructure:"expiry"`
		// Secret, when set, enables encryption at rest for session data.
		Secret string `mapstructure:"secret"`
	} `mapstructure:"session"`
	Stats struct {
		Enabled bool   `mapstructure:"enabled"`
		Backend string `mapstructure:"backend"`
	} `mapstructure:"stats"`
}

// Default returns the settings an application runs with when no file is
// given.
func Default() Settings {
	var s Settings
	s.Name = "arbor"
	s.Server.Addr = ":3000"
	s.Server.ShutdownTimeout = 10 * time.Second
	s.Dispatcher.RecursionLimit = 1000
	s.Session.Store = "memory"
	s.Session.Expiry = 2 * time.Hour
	s.Stats.Backend = "memory"
	return s
}

// Load reads a YAML file into a raw configuration map. A missing file is not
// an error; it yields an empty map so defaults apply.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals raw YAML into a configuration map.
func Parse(data []byte) (map[string]any, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return raw, nil
}

// Decode maps a raw configuration onto Default settings. Duration fields
// accept strings like "30s".
func Decode(raw map[string]any) (Settings, error) {
	s := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &s,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return s, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return s, fmt.Errorf("failed to decode config: %w", err)
	}
	return s, nil
}

// Lookup resolves a dotted key ("dispatcher.recursion_limit") in a raw
// configuration map, returning def when any segment is missing.
func Lookup(raw map[string]any, key string, def any) any {
	if key == "" {
		return def
	}

	current := any(raw)
	for _, part := range strings.Split(key, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return def
		}
		current, ok = node[part]
		if !ok {
			return def
		}
	}
	return current
}
