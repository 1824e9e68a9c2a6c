// Package config loads the service configuration from a JSON or YAML file
// with optional K_-prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Jainil7227/AlphaNeuron/core/agent"
	"github.com/Jainil7227/AlphaNeuron/core/fare"
	"github.com/Jainil7227/AlphaNeuron/core/metrics"
	"github.com/Jainil7227/AlphaNeuron/core/policy"
	"github.com/Jainil7227/AlphaNeuron/core/snapshot"
	"github.com/Jainil7227/AlphaNeuron/infra/notify"
)

// ProviderConfig points one HTTP provider client at its endpoint.
type ProviderConfig struct {
	BaseURL   string `json:"base_url"`
	APIKey    string `json:"api_key"`
	TimeoutMS int    `json:"timeout_ms"`
}

// ProvidersConfig selects the external data sources. With Static true the
// deterministic stub providers are used instead of HTTP clients.
type ProvidersConfig struct {
	Static      bool           `json:"static"`
	Routing     ProviderConfig `json:"routing"`
	Weather     ProviderConfig `json:"weather"`
	FuelPrice   ProviderConfig `json:"fuel_price"`
	Marketplace ProviderConfig `json:"marketplace"`
}

// DecisionLogConfig defines the decision log storage.
type DecisionLogConfig struct {
	// Backend selects the store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *DecisionLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "decisions.log"
	}
}

// Validate checks mandatory fields.
func (c DecisionLogConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// Config is the full service configuration.
type Config struct {
	Agent       agent.Config      `json:"agent"`
	Policy      policy.Config     `json:"policy"`
	Fare        fare.Config       `json:"fare"`
	Snapshot    snapshot.Config   `json:"snapshot"`
	Providers   ProvidersConfig   `json:"providers"`
	MQTT        notify.Config     `json:"mqtt"`
	Metrics     metrics.Config    `json:"metrics"`
	DecisionLog DecisionLogConfig `json:"decision_log"`
}

// Load reads the config file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.DecisionLog.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills every zero-valued tunable.
func (c *Config) ApplyDefaults() {
	c.Agent.SetDefaults()
	c.Policy.SetDefaults()
	c.Fare.SetDefaults()
	c.Snapshot.SetDefaults()
	c.DecisionLog.SetDefaults()
}
