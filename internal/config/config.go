package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Required environment variables. The process refuses to start without
// them, before any network activity.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGatewayToken    = "GEKKO_GATEWAY_TOKEN"
	EnvRPCURL          = "EVM_RPC_URL"
	EnvCoinGeckoAPIKey = "COINGECKO_API_KEY"
)

type Config struct {
	Model    ModelConfig               `toml:"model"`
	Gateway  GatewayConfig             `toml:"gateway"`
	Wallet   WalletConfig              `toml:"wallet"`
	Channels map[string]*ChannelConfig `toml:"channel"`
	Services ServicesConfig            `toml:"services"`
	Trace    TraceConfig               `toml:"trace"`

	// Credentials come from the environment, never from the config file.
	Credentials Credentials `toml:"-"`
}

type ModelConfig struct {
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url"`
}

type GatewayConfig struct {
	Addr string `toml:"addr"`
}

type WalletConfig struct {
	Address string `toml:"address"`
}

type ChannelConfig struct {
	Enabled  bool              `toml:"enabled"`
	Type     string            `toml:"type"`
	Settings map[string]string `toml:"settings"`
}

type ServicesConfig struct {
	Brave BraveConfig `toml:"brave"`
}

type BraveConfig struct {
	APIKey string `toml:"api_key"`
}

type TraceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
}

type Credentials struct {
	OpenAIAPIKey    string
	GatewayToken    string
	RPCURL          string
	CoinGeckoAPIKey string
}

// Load reads the optional TOML config file and the required environment
// credentials. Missing credentials are reported together in one error.
func Load() (*Config, error) {
	cfg := &Config{
		Gateway: GatewayConfig{
			Addr: ":8484",
		},
	}

	path := configPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	creds, err := loadCredentials()
	if err != nil {
		return nil, err
	}
	cfg.Credentials = creds

	return cfg, nil
}

func loadCredentials() (Credentials, error) {
	var missing []string
	get := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	creds := Credentials{
		OpenAIAPIKey:    get(EnvOpenAIAPIKey),
		GatewayToken:    get(EnvGatewayToken),
		RPCURL:          get(EnvRPCURL),
		CoinGeckoAPIKey: get(EnvCoinGeckoAPIKey),
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return creds, nil
}

func configPath() string {
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "gekko", "config.toml")
}
