package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultMainnetURL = "https://nodes.amadeus.bot"
	DefaultTestnetURL = "https://testnet.amadeus.bot"
)

type Config struct {
	MainnetURL  string
	TestnetURL  string
	APIKey      string
	FaucetSeed  string
	DatabaseURL string
	MCPPort     int
	Debug       bool
}

// Load reads configuration from an optional config file plus environment
// variables. Environment always wins so deployments can stay file-less.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("mainnet_url", DefaultMainnetURL)
	v.SetDefault("testnet_url", DefaultTestnetURL)
	v.SetDefault("database_url", "amadeus-mcp.db")
	v.SetDefault("mcp_port", 3000)
	v.SetDefault("debug", false)

	// Environment names kept compatible with the node tooling.
	bindings := map[string]string{
		"mainnet_url":  "AMADEUS_MAINNET_URL",
		"testnet_url":  "AMADEUS_TESTNET_URL",
		"api_key":      "BLOCKCHAIN_API_KEY",
		"faucet_seed":  "AMADEUS_TESTNET_SK",
		"database_url": "DATABASE_URL",
		"mcp_port":     "MCP_PORT",
		"debug":        "DEBUG",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("amadeus-mcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		MainnetURL:  strings.TrimRight(v.GetString("mainnet_url"), "/"),
		TestnetURL:  strings.TrimRight(v.GetString("testnet_url"), "/"),
		APIKey:      v.GetString("api_key"),
		FaucetSeed:  v.GetString("faucet_seed"),
		DatabaseURL: v.GetString("database_url"),
		MCPPort:     v.GetInt("mcp_port"),
		Debug:       v.GetBool("debug"),
	}

	if cfg.MainnetURL == "" {
		return nil, fmt.Errorf("mainnet URL must not be empty")
	}
	if cfg.TestnetURL == "" {
		return nil, fmt.Errorf("testnet URL must not be empty")
	}

	return cfg, nil
}

// FaucetEnabled reports whether faucet key material was provided.
func (c *Config) FaucetEnabled() bool {
	return c.FaucetSeed != ""
}
