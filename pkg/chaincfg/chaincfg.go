package chaincfg

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes the balance sources: per-chain RPC endpoints and the
// token-holdings aggregator API.
type Config struct {
	RPCs            map[string]Chain `yaml:"rpcs"`
	Holdings        Holdings         `yaml:"holdings"`
	ChainTimeoutSec int              `yaml:"chain_timeout_sec"`
	Derivation      Derivation       `yaml:"derivation"`
}

type Chain struct {
	Name         string `yaml:"name"`
	RPCURL       string `yaml:"rpc_url"`
	NativeSymbol string `yaml:"native_symbol"`
	EVM          *bool  `yaml:"evm"` // nil counts as true
}

type Holdings struct {
	BaseURL      string `yaml:"base_url"`
	AccessKeyEnv string `yaml:"access_key_env"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

type Derivation struct {
	UseHD *bool `yaml:"use_hd"` // nil counts as true
}

// NamedChain is a Chain with its config key attached, for ordered iteration.
type NamedChain struct {
	ID string
	Chain
}

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chains config %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode yaml %q: %w", path, err)
	}

	injectEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation %q: %w", path, err)
	}

	if cfg.Holdings.TimeoutSec <= 0 {
		cfg.Holdings.TimeoutSec = 15
	}
	if cfg.ChainTimeoutSec <= 0 {
		cfg.ChainTimeoutSec = 10
	}
	return &cfg, nil
}

// injectEnv replaces ${VAR} placeholders in rpc URLs with environment values.
// Endpoints whose variable is unset keep the placeholder and fail to dial,
// which skips the chain with a warning instead of aborting startup.
func injectEnv(cfg *Config) {
	for id, ch := range cfg.RPCs {
		ch.RPCURL = envPlaceholder.ReplaceAllStringFunc(ch.RPCURL, func(m string) string {
			name := envPlaceholder.FindStringSubmatch(m)[1]
			if v := os.Getenv(name); v != "" {
				return v
			}
			return m
		})
		cfg.RPCs[id] = ch
	}
}

// HoldingsAccessKey resolves the aggregator API key from the environment.
// Empty means the holdings source is disabled.
func (c *Config) HoldingsAccessKey() string {
	env := c.Holdings.AccessKeyEnv
	if env == "" {
		env = "DEBANK_ACCESS_KEY"
	}
	return os.Getenv(env)
}

// HoldingsTimeout returns the per-call timeout for the holdings API.
func (c *Config) HoldingsTimeout() time.Duration {
	return time.Duration(c.Holdings.TimeoutSec) * time.Second
}

// ChainTimeout returns the per-call timeout for chain RPC queries.
func (c *Config) ChainTimeout() time.Duration {
	return time.Duration(c.ChainTimeoutSec) * time.Second
}

// UseHD reports whether hierarchical derivation is enabled (default true).
func (c *Config) UseHD() bool {
	return c.Derivation.UseHD == nil || *c.Derivation.UseHD
}

// EVMChains returns the configured EVM-compatible chains in stable (sorted by
// id) order. Non-EVM chains are not served by this pipeline.
func (c *Config) EVMChains() []NamedChain {
	out := make([]NamedChain, 0, len(c.RPCs))
	for id, ch := range c.RPCs {
		if ch.EVM != nil && !*ch.EVM {
			continue
		}
		out = append(out, NamedChain{ID: id, Chain: ch})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func validate(c *Config) error {
	if c == nil {
		return errors.New("nil config")
	}
	for id, ch := range c.RPCs {
		if ch.RPCURL == "" {
			return fmt.Errorf("rpcs.%s: rpc_url must not be empty", id)
		}
		if ch.NativeSymbol == "" {
			return fmt.Errorf("rpcs.%s: native_symbol must not be empty", id)
		}
	}
	if c.Holdings.BaseURL == "" && len(c.RPCs) == 0 {
		return errors.New("no balance sources defined: rpcs and holdings.base_url are both empty")
	}
	return nil
}
