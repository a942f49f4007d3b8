// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldcrafter/worldcrafter/internal/config"
	"github.com/worldcrafter/worldcrafter/pkg/errutil"
)

// newFlags mirrors the flag set the mcp command registers.
func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database-url", "", "")
	flags.String("log-format", "", "")
	flags.String("metrics-addr", "", "")
	flags.String("user-id", "", "")
	return flags
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worldcrafter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:9100", cfg.Observability.Addr)
	assert.Empty(t, cfg.MCP.UserID)
}

func TestLoad_UnchangedFlagsKeepDefaults(t *testing.T) {
	cfg, err := config.Load("", newFlags())
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:9100", cfg.Observability.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
database_url: postgres://localhost:5432/worlds
log_format: text
observability:
  addr: ":9200"
mcp:
  user_id: 01J3WC0000000000000000000A
`)
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load(path, newFlags())
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/worlds", cfg.DatabaseURL)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":9200", cfg.Observability.Addr)
	assert.Equal(t, "01J3WC0000000000000000000A", cfg.MCP.UserID)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `
log_format: text
observability:
  addr: ":9200"
`)

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{
		"--log-format=json",
		"--metrics-addr=:9300",
		"--user-id=01J3WC0000000000000000000A",
	}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":9300", cfg.Observability.Addr, "dashed flag maps onto observability.addr")
	assert.Equal(t, "01J3WC0000000000000000000A", cfg.MCP.UserID, "dashed flag maps onto mcp.user_id")
}

func TestLoad_EnvOverridesEverything(t *testing.T) {
	path := writeConfigFile(t, `database_url: postgres://file/db`)

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--database-url=postgres://flag/db"}))

	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_FAILED")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "log_format: [unclosed")
	_, err := config.Load(path, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_FAILED")
}
