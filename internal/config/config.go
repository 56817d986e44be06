// Package config loads the server configuration: defaults first, then an
// optional YAML file, then flag overrides applied by the caller.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmourad/chainmcp/internal/cache"
)

// Transport names accepted by server.transport.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config is the top-level server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Cache    CacheConfig    `yaml:"cache"`
	Backends BackendsConfig `yaml:"backends"`

	// RequestTimeout bounds each downstream backend call.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ServerConfig holds the MCP transport settings.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Transport is "stdio" or "sse".
	Transport string `yaml:"transport"`

	// ListenAddr is the SSE listen address; unused for stdio.
	ListenAddr string `yaml:"listen_addr"`
}

// MetricsConfig holds the scrape endpoint settings.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// CacheConfig enables the optional Redis response cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`

	cache.Config `yaml:",inline"`
}

// BackendsConfig declares which network adapters to build. A nil entry
// leaves that network unregistered.
type BackendsConfig struct {
	Flux     *FluxBackend   `yaml:"flux"`
	Ethereum *EVMBackend    `yaml:"ethereum"`
	Solana   *SolanaBackend `yaml:"solana"`
}

// FluxBackend configures the Flux explorer-API adapter.
type FluxBackend struct {
	BaseURL string `yaml:"base_url"`
}

// EVMBackend configures an EVM JSON-RPC adapter.
type EVMBackend struct {
	RPCURL      string `yaml:"rpc_url"`
	ExplorerURL string `yaml:"explorer_url"`
}

// SolanaBackend configures the Solana JSON-RPC adapter.
type SolanaBackend struct {
	RPCURL string `yaml:"rpc_url"`
}

// Default returns the built-in configuration: stdio transport, metrics on
// :9464, and the Flux public API as the only backend.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:       "chainmcp",
			Version:    "0.1.0",
			Transport:  TransportStdio,
			ListenAddr: ":8321",
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9464",
		},
		Cache: CacheConfig{
			Config: cache.Config{
				Addr:      "localhost:6379",
				TTL:       30 * time.Second,
				KeyPrefix: "chainmcp:",
			},
		},
		Backends: BackendsConfig{
			Flux: &FluxBackend{BaseURL: "https://api.runonflux.io"},
		},
		RequestTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from defaults plus an optional file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportSSE:
	default:
		return fmt.Errorf("unknown transport %q: want %s or %s",
			c.Server.Transport, TransportStdio, TransportSSE)
	}

	if c.Server.Transport == TransportSSE && c.Server.ListenAddr == "" {
		return fmt.Errorf("sse transport needs server.listen_addr")
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("metrics enabled without metrics.listen_addr")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}

	b := c.Backends
	if b.Flux == nil && b.Ethereum == nil && b.Solana == nil {
		return fmt.Errorf("no backends configured")
	}
	if b.Flux != nil && b.Flux.BaseURL == "" {
		return fmt.Errorf("flux backend needs base_url")
	}
	if b.Ethereum != nil && b.Ethereum.RPCURL == "" {
		return fmt.Errorf("ethereum backend needs rpc_url")
	}
	if b.Solana != nil && b.Solana.RPCURL == "" {
		return fmt.Errorf("solana backend needs rpc_url")
	}
	return nil
}
