// Package config loads swarm configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/aliasghar-rao/synapse-go/internal/application/strategy"
	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Config is the configuration surface consumed by the coordination core.
type Config struct {
	MaxAgents             int     `yaml:"max_agents"`
	LoadBalancingStrategy string  `yaml:"load_balancing_strategy"`
	ConsensusThreshold    float64 `yaml:"consensus_threshold"`
	CommunicationProtocol string  `yaml:"communication_protocol"`
	ValidationEnabled     bool    `yaml:"validation_enabled"`
	Debug                 bool    `yaml:"debug"`
}

func defaults() Config {
	return Config{
		MaxAgents:             50,
		LoadBalancingStrategy: string(strategy.Intelligent),
		ConsensusThreshold:    0.7,
		CommunicationProtocol: "channel",
		ValidationEnabled:     false,
	}
}

// Default returns the default configuration.
func Default() Config {
	return defaults()
}

// Load reads configuration from a YAML file, applies environment
// overrides, and validates the result. A missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SYNAPSE_MAX_AGENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAgents = n
		}
	}
	if v := os.Getenv("SYNAPSE_STRATEGY"); v != "" {
		cfg.LoadBalancingStrategy = v
	}
	if v := os.Getenv("SYNAPSE_CONSENSUS_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ConsensusThreshold = f
		}
	}
	if v := os.Getenv("SYNAPSE_PROTOCOL"); v != "" {
		cfg.CommunicationProtocol = v
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.MaxAgents <= 0 {
		return shared.NewConfigurationError("max_agents must be greater than 0",
			map[string]interface{}{"maxAgents": c.MaxAgents})
	}
	if !strategy.Valid(strategy.Name(c.LoadBalancingStrategy)) {
		return shared.NewConfigurationError(
			fmt.Sprintf("unknown load balancing strategy %q", c.LoadBalancingStrategy),
			map[string]interface{}{"strategy": c.LoadBalancingStrategy})
	}
	if c.ConsensusThreshold < 0 || c.ConsensusThreshold > 1 {
		return shared.NewConfigurationError("consensus_threshold must be within 0..1",
			map[string]interface{}{"consensusThreshold": c.ConsensusThreshold})
	}
	return nil
}
