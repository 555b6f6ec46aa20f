package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Marketfeed MarketfeedConfig `yaml:"marketfeed"`
	Channels   ChannelsConfig   `yaml:"channels"`
	Hub        HubConfig        `yaml:"hub"`
	// Pairs is the default instrument list, as hyphenated base-quote
	// pairs. Adapters without their own symbol list inherit it.
	Pairs   []string      `yaml:"pairs"`
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
}

type MarketfeedConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type ChannelsConfig struct {
	EventBuffer int `yaml:"event_buffer"`
}

// HubConfig drives the downstream broadcast websocket server.
type HubConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MaxClients      int           `yaml:"max_clients"`
	AllowedIPs      []string      `yaml:"allowed_ips"`
	MaxPayloadBytes int64         `yaml:"max_payload_bytes"`
	RateLimit       int           `yaml:"rate_limit"`
	PingInterval    time.Duration `yaml:"ping_interval"`
}

// Addr returns the host:port the hub listens on.
func (h HubConfig) Addr() string {
	return net.JoinHostPort(h.Host, fmt.Sprintf("%d", h.Port))
}

type SourceConfig struct {
	Binance AdapterConfig `yaml:"binance"`
	Bybit   AdapterConfig `yaml:"bybit"`
	Okx     AdapterConfig `yaml:"okx"`
}

// AdapterConfig configures one exchange feed adapter.
type AdapterConfig struct {
	Enabled      bool               `yaml:"enabled"`
	MarketType   string             `yaml:"market_type"`
	Symbols      []string           `yaml:"symbols"`
	URL          string             `yaml:"url"`
	BusinessURL  string             `yaml:"business_url"`
	Reconnect    ReconnectConfig    `yaml:"reconnect"`
	Subscription SubscriptionConfig `yaml:"subscription"`
}

// ReconnectConfig selects the reconnect policy for one adapter.
// Policy "fixed" retries every Interval; "backoff" grows the delay
// exponentially with jitter between BackoffBase and BackoffCap.
type ReconnectConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Interval    time.Duration `yaml:"interval"`
	Policy      string        `yaml:"policy"`
	BackoffBase time.Duration `yaml:"backoff_base"`
	BackoffCap  time.Duration `yaml:"backoff_cap"`
}

// SubscriptionConfig paces the drain of queued subscribe requests on
// request/response exchanges.
type SubscriptionConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	BatchInterval time.Duration `yaml:"batch_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

func LoadConfig(path string) (*Config, error) {
	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Hub: HubConfig{
			Host:            "127.0.0.1",
			MaxClients:      100,
			MaxPayloadBytes: 10 * 1024,
			RateLimit:       10,
			PingInterval:    30 * time.Second,
			AllowedIPs:      []string{"127.0.0.1", "::1"},
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyAdapterDefaults(&config.Source.Binance)
	applyAdapterDefaults(&config.Source.Bybit)
	applyAdapterDefaults(&config.Source.Okx)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyAdapterDefaults(cfg *AdapterConfig) {
	if cfg.Reconnect.MaxAttempts <= 0 {
		cfg.Reconnect.MaxAttempts = 10
	}
	if cfg.Reconnect.Interval <= 0 {
		cfg.Reconnect.Interval = 5 * time.Second
	}
	if cfg.Reconnect.Policy == "" {
		cfg.Reconnect.Policy = "fixed"
	}
	if cfg.Reconnect.BackoffBase <= 0 {
		cfg.Reconnect.BackoffBase = time.Second
	}
	if cfg.Reconnect.BackoffCap <= 0 {
		cfg.Reconnect.BackoffCap = time.Minute
	}
	if cfg.Subscription.BatchSize <= 0 {
		cfg.Subscription.BatchSize = 10
	}
	if cfg.Subscription.BatchInterval <= 0 {
		cfg.Subscription.BatchInterval = 200 * time.Millisecond
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Marketfeed.Name == "" {
		return fmt.Errorf("marketfeed.name is required")
	}

	if cfg.Marketfeed.Version == "" {
		return fmt.Errorf("marketfeed.version is required")
	}

	if cfg.Channels.EventBuffer <= 0 {
		return fmt.Errorf("channels.event_buffer must be greater than 0")
	}

	if cfg.Hub.Port <= 0 || cfg.Hub.Port > 65535 {
		return fmt.Errorf("hub.port must be a valid TCP port")
	}

	if cfg.Hub.MaxClients <= 0 {
		return fmt.Errorf("hub.max_clients must be greater than 0")
	}

	if cfg.Hub.MaxPayloadBytes <= 0 {
		return fmt.Errorf("hub.max_payload_bytes must be greater than 0")
	}

	if cfg.Hub.RateLimit <= 0 {
		return fmt.Errorf("hub.rate_limit must be greater than 0")
	}

	if cfg.Hub.PingInterval <= 0 {
		return fmt.Errorf("hub.ping_interval must be greater than 0")
	}

	for _, ip := range cfg.Hub.AllowedIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("hub.allowed_ips entry '%s' is not a valid IP", ip)
		}
	}

	for name, src := range map[string]AdapterConfig{
		"binance": cfg.Source.Binance,
		"bybit":   cfg.Source.Bybit,
		"okx":     cfg.Source.Okx,
	} {
		if !src.Enabled {
			continue
		}
		if p := strings.ToLower(src.Reconnect.Policy); p != "fixed" && p != "backoff" {
			return fmt.Errorf("source.%s.reconnect.policy must be 'fixed' or 'backoff'", name)
		}
	}

	return nil
}
