// Package config loads the agent configuration from YAML with environment
// variable overrides for credentials and operational knobs.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/edgaragent/edgaragent/internal/agent"
	"github.com/edgaragent/edgaragent/internal/llm"
	"github.com/edgaragent/edgaragent/internal/ratelimit"
	"github.com/edgaragent/edgaragent/internal/tools/edgar"
	"github.com/edgaragent/edgaragent/internal/tools/webpage"
	"github.com/edgaragent/edgaragent/internal/tools/websearch"
)

// Config is the main configuration structure for the agent.
type Config struct {
	LLM       llm.Config       `yaml:"llm"`
	RateLimit ratelimit.Config `yaml:"rate_limit"`
	Tools     ToolsConfig      `yaml:"tools"`
	Logging   LoggingConfig    `yaml:"logging"`
	Verbose   bool             `yaml:"verbose"`
}

type ToolsConfig struct {
	Edgar     edgar.Config   `yaml:"edgar"`
	WebSearch websearch.Config    `yaml:"websearch"`
	Webpage   webpage.Config `yaml:"webpage"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		RateLimit: ratelimit.DefaultConfig(),
	}
	cfg.ApplyEnv()
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyEnv()
	applyDefaults(&cfg)

	return &cfg, nil
}

// ApplyEnv fills credentials and operational knobs from the environment.
// Environment values win over file values only where the file left a field
// empty, except GEMINI_API_MIN_DELAY and EDGAR_AGENT_VERBOSE, which always
// win so operators can tune a running deployment without editing files.
func (c *Config) ApplyEnv() {
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case llm.ProviderOpenAI:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case llm.ProviderAnthropic:
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			c.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	}
	if c.Tools.Edgar.APIKey == "" {
		c.Tools.Edgar.APIKey = os.Getenv("SEC_EDGAR_API_KEY")
	}
	if c.Tools.WebSearch.APIKey == "" {
		c.Tools.WebSearch.APIKey = os.Getenv("SERP_API_KEY")
	}
	c.RateLimit = c.RateLimit.FromEnv()
	if raw := os.Getenv(agent.VerboseEnv); raw != "" {
		if verbose, err := strconv.ParseBool(raw); err == nil {
			c.Verbose = verbose
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.RateLimit.MinDelay == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig().FromEnv()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
