// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

// Package config loads service configuration from file, flags, and
// environment.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds all runtime configuration for WorldCrafter.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. The DATABASE_URL
	// environment variable takes precedence over file and flag values.
	DatabaseURL string `koanf:"database_url"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	Observability ObservabilityConfig `koanf:"observability"`
	MCP           MCPConfig           `koanf:"mcp"`
}

// ObservabilityConfig configures the metrics/health endpoint.
type ObservabilityConfig struct {
	// Addr is the listen address for /metrics and health probes.
	// Empty disables the observability server.
	Addr string `koanf:"addr"`
}

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	// UserID is the caller identity (a ULID) MCP tool invocations act
	// as. The MCP transport authenticates the connection out of band;
	// this maps it onto a world owner.
	UserID string `koanf:"user_id"`
}

// Default returns the baseline configuration before any source is applied.
func Default() Config {
	return Config{
		LogFormat: "json",
		Observability: ObservabilityConfig{
			Addr: "127.0.0.1:9100",
		},
	}
}

// Load builds configuration by layering, in increasing precedence:
// defaults, an optional YAML file, command-line flags, and the
// DATABASE_URL environment variable.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	// Defaults go in first so unchanged flags (whose pflag defaults are
	// empty) never clobber them.
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithValue(flags, ".", k, flagKey), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
	}
	return cfg, nil
}

// flagKey maps dashed CLI flag names onto config keys.
func flagKey(key, value string) (string, interface{}) {
	switch key {
	case "metrics-addr":
		return "observability.addr", value
	case "user-id":
		return "mcp.user_id", value
	}
	return strings.ReplaceAll(key, "-", "_"), value
}
