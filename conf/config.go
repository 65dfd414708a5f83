package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/oasisprotocol/latest-block/fetcher"
)

// EnvPrefix is the prefix of environment variables overriding the configuration.
const EnvPrefix = "LATEST_BLOCK_"

// Config contains the CLI configuration.
type Config struct {
	Log     *LogConfig     `koanf:"log"`
	Fetcher *FetcherConfig `koanf:"fetcher"`
	Gateway *GatewayConfig `koanf:"gateway"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return err
		}
	}
	if cfg.Fetcher != nil {
		if err := cfg.Fetcher.Validate(); err != nil {
			return fmt.Errorf("fetcher: %w", err)
		}
	}
	if cfg.Gateway != nil {
		if err := cfg.Gateway.Validate(); err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
	}

	return nil
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
}

// Validate validates the logging configuration.
func (cfg *LogConfig) Validate() error {
	var format logging.Format
	if err := format.Set(cfg.Format); err != nil {
		return err
	}
	var level logging.Level
	return level.Set(cfg.Level)
}

// FetcherConfig contains the block number query configuration.
//
// The endpoint itself is fixed to fetcher.DefaultEndpoint.
type FetcherConfig struct {
	// Timeout bounds a single query. Zero disables the timeout.
	Timeout time.Duration `koanf:"timeout"`

	// Transport is the JSON-RPC client implementation, "ethclient" or "jsonrpc".
	Transport string `koanf:"transport"`
}

// Validate validates the fetcher configuration.
func (cfg *FetcherConfig) Validate() error {
	if cfg.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", cfg.Timeout)
	}
	return fetcher.Transport(cfg.Transport).Validate()
}

// Options returns the fetcher options matching the configuration.
func (cfg *FetcherConfig) Options() []fetcher.Option {
	if cfg == nil {
		return nil
	}
	return []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithTransport(fetcher.Transport(cfg.Transport)),
	}
}

// GatewayConfig is the gateway server configuration.
type GatewayConfig struct {
	// HTTP is the gateway http endpoint config.
	HTTP *GatewayHTTPConfig `koanf:"http"`

	// Monitoring is the gateway prometheus configuration.
	Monitoring *GatewayMonitoringConfig `koanf:"monitoring"`
}

// Validate validates the gateway configuration.
func (cfg *GatewayConfig) Validate() error {
	if cfg.HTTP == nil {
		return fmt.Errorf("missing http config")
	}
	if cfg.HTTP.Port < 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("malformed http port %d", cfg.HTTP.Port)
	}
	if cfg.Monitoring.Enabled() && (cfg.Monitoring.Port < 0 || cfg.Monitoring.Port > 65535) {
		return fmt.Errorf("malformed monitoring port %d", cfg.Monitoring.Port)
	}
	return nil
}

// GatewayMonitoringConfig is the gateway prometheus configuration.
type GatewayMonitoringConfig struct {
	// Host is the host interface on which to start the prometheus http server. Disabled if unset.
	Host string `koanf:"host"`

	// Port is the port number on which to start the prometheus http server.
	Port int `koanf:"port"`
}

// Enabled returns true if monitoring is configured.
func (cfg *GatewayMonitoringConfig) Enabled() bool {
	if cfg == nil {
		return false
	}
	if cfg.Host == "" {
		return false
	}
	return true
}

// Address returns the prometheus listen address.
//
// Returns empty string if monitoring is not configured.
func (cfg *GatewayMonitoringConfig) Address() string {
	if !cfg.Enabled() {
		return ""
	}
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

type GatewayHTTPConfig struct {
	// Host is the host interface on which to start the HTTP RPC server. Defaults to localhost.
	Host string `koanf:"host"`

	// Port is the port number on which to start the HTTP RPC server. Defaults to 8545.
	Port int `koanf:"port"`

	// Cors are the CORS allowed urls.
	Cors []string `koanf:"cors"`

	// PathPrefix specifies a path prefix on which http-rpc is to be served. Defaults to '/'.
	PathPrefix string `koanf:"path_prefix"`

	// Timeouts allows for customization of the timeout values used by the HTTP RPC
	// interface.
	Timeouts *HTTPTimeouts `koanf:"timeouts"`
}

type HTTPTimeouts struct {
	Read  *time.Duration `koanf:"read"`
	Write *time.Duration `koanf:"write"`
	Idle  *time.Duration `koanf:"idle"`
}

// defaults are loaded before the configuration file and the environment.
var defaults = map[string]interface{}{
	"log.format":               "logfmt",
	"log.level":                "info",
	"fetcher.timeout":          fetcher.DefaultTimeout.String(),
	"fetcher.transport":        string(fetcher.TransportEthclient),
	"gateway.http.host":        "localhost",
	"gateway.http.port":        8545,
	"gateway.http.path_prefix": "/",
}

// InitConfig initializes configuration from defaults, the optional file and
// the environment, in that order of precedence.
func InitConfig(f string) (*Config, error) {
	var config Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}

	// Load configuration from the yaml config.
	if f != "" {
		if err := k.Load(file.Provider(f), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Load environment variables and merge into the loaded config.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		// `__` is used as a hierarchy delimiter.
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	// Unmarshal into config.
	if err := k.Unmarshal("", &config); err != nil {
		return nil, err
	}

	// Validate config.
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
