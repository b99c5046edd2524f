package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the full claimpilot configuration.
// Hierarchy: CLI flags > CLAIMPILOT_* env vars > config file > defaults.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	MCP         MCPConfig         `yaml:"mcp"`
	Agents      AgentsConfig      `yaml:"agents"`
	Cache       CacheConfig       `yaml:"cache"`
	Rules       RulesConfig       `yaml:"rules"`
	LLM         LLMConfig         `yaml:"llm"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls the shared HTTP client behaviour.
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	HTTPProxy  string        `yaml:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy"`
}

// MCPConfig locates the MCP data-access server fronting the claim containers.
type MCPConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AgentsConfig controls specialist agent dispatch.
type AgentsConfig struct {
	Host              string        `yaml:"host"`
	Timeout           time.Duration `yaml:"timeout"`
	Retries           int           `yaml:"retries"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// CacheConfig controls claim record caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// RulesConfig locates the coverage rules source.
type RulesConfig struct {
	// File is an optional local YAML rules file; when empty, rules are
	// loaded from the rules_catalog container through MCP.
	File string `yaml:"file"`
}

// LLMConfig configures the optional request clarifier.
type LLMConfig struct {
	// Provider: "openai", "azure", or "" (disabled).
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"-"` // env only, never written to disk
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
}

// DashboardConfig controls the monitoring API server.
type DashboardConfig struct {
	Addr      string `yaml:"addr"`
	StepsFile string `yaml:"steps_file"`
}

// ConcurrencyConfig controls batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls CLI output behaviour.
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	JSON    bool   `yaml:"json"`
	Dir     string `yaml:"dir"`
}

// DefaultConfig returns sensible defaults, including the fixed port
// assignments used across the deployment.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		MCP: MCPConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Agents: AgentsConfig{
			Host:              "localhost",
			Timeout:           60 * time.Second,
			Retries:           2,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 5 * time.Minute,
			DiskDir:   defaultCacheDir(),
			DiskTTL:   time.Hour,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30 * time.Second,
			MaxTokens: 500,
		},
		Dashboard: DashboardConfig{
			Addr:      ":3000",
			StepsFile: "claimpilot-steps.json",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Dir: "./claimpilot-reports",
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claimpilot-cache"
	}
	return filepath.Join(home, ".claimpilot", "cache")
}
