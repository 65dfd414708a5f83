package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oasisprotocol/latest-block/fetcher"
)

func TestInitConfig(t *testing.T) {
	cfg, err := InitConfig("tests.yml")
	require.NoError(t, err)

	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 5*time.Second, cfg.Fetcher.Timeout)
	require.Equal(t, string(fetcher.TransportJSONRPC), cfg.Fetcher.Transport)
	require.Equal(t, "127.0.0.1", cfg.Gateway.HTTP.Host)
	require.Equal(t, []string{"*"}, cfg.Gateway.HTTP.Cors)
	require.Equal(t, "/rpc", cfg.Gateway.HTTP.PathPrefix)
	require.NotNil(t, cfg.Gateway.HTTP.Timeouts.Read)
	require.Equal(t, 3*time.Second, *cfg.Gateway.HTTP.Timeouts.Read)
	require.Nil(t, cfg.Gateway.HTTP.Timeouts.Write)
	require.False(t, cfg.Gateway.Monitoring.Enabled())
	require.Empty(t, cfg.Gateway.Monitoring.Address())
}

func TestInitConfigDefaults(t *testing.T) {
	cfg, err := InitConfig("")
	require.NoError(t, err)

	require.Equal(t, "logfmt", cfg.Log.Format)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, fetcher.DefaultTimeout, cfg.Fetcher.Timeout)
	require.Equal(t, string(fetcher.TransportEthclient), cfg.Fetcher.Transport)
	require.Equal(t, "localhost", cfg.Gateway.HTTP.Host)
	require.Equal(t, 8545, cfg.Gateway.HTTP.Port)
	require.Equal(t, "/", cfg.Gateway.HTTP.PathPrefix)
	require.Len(t, cfg.Fetcher.Options(), 2)
}

func TestInitConfigEnv(t *testing.T) {
	t.Setenv("LATEST_BLOCK_FETCHER__TIMEOUT", "250ms")
	t.Setenv("LATEST_BLOCK_GATEWAY__HTTP__PORT", "9545")
	t.Setenv("LATEST_BLOCK_GATEWAY__MONITORING__HOST", "0.0.0.0")
	t.Setenv("LATEST_BLOCK_GATEWAY__MONITORING__PORT", "9999")

	cfg, err := InitConfig("tests.yml")
	require.NoError(t, err)

	require.Equal(t, 250*time.Millisecond, cfg.Fetcher.Timeout)
	require.Equal(t, 9545, cfg.Gateway.HTTP.Port)
	require.True(t, cfg.Gateway.Monitoring.Enabled())
	require.Equal(t, "0.0.0.0:9999", cfg.Gateway.Monitoring.Address())
	// Untouched values still come from the file.
	require.Equal(t, "/rpc", cfg.Gateway.HTTP.PathPrefix)
}

func TestInitConfigMissingFile(t *testing.T) {
	_, err := InitConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestInitConfigInvalid(t *testing.T) {
	for _, tc := range []struct {
		yaml string
		msg  string
	}{
		{"log:\n  format: xml\n", "unknown log format should be rejected"},
		{"log:\n  level: chatty\n", "unknown log level should be rejected"},
		{"fetcher:\n  transport: grpc\n", "unknown transport should be rejected"},
		{"fetcher:\n  timeout: -1s\n", "negative timeout should be rejected"},
		{"gateway:\n  http:\n    port: 70000\n", "out of range http port should be rejected"},
		{"gateway:\n  monitoring:\n    host: localhost\n    port: -1\n", "out of range monitoring port should be rejected"},
	} {
		f := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(f, []byte(tc.yaml), 0o600))

		_, err := InitConfig(f)
		require.Error(t, err, tc.msg)
	}
}
