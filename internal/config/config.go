// Package config handles coinsage configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all coinsage configuration.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Agent     AgentConfig     `mapstructure:"agent" yaml:"agent"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant" yaml:"qdrant"`
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge" yaml:"knowledge"`
	Memory    MemoryConfig    `mapstructure:"memory" yaml:"memory"`
}

// LLMConfig configures the chat-completions endpoint.
type LLMConfig struct {
	Endpoint       string  `mapstructure:"endpoint" yaml:"endpoint"`
	Model          string  `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// AgentConfig configures the research agent loop.
type AgentConfig struct {
	MaxSteps    int    `mapstructure:"max_steps" yaml:"max_steps"`
	Mode        string `mapstructure:"mode" yaml:"mode"` // "two-phase", "single-phase" or "plan-solve"
	RecentTurns int    `mapstructure:"recent_turns" yaml:"recent_turns"`
	// ReportStyle is "focused" (question-driven sections) or "fixed" (the
	// five-part report layout).
	ReportStyle string `mapstructure:"report_style" yaml:"report_style"`
	// CacheTTLSeconds reuses the answer for a repeated question within the
	// window; 0 disables the cache.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
}

// QdrantConfig configures the vector store connection.
type QdrantConfig struct {
	Host                string `mapstructure:"host" yaml:"host"`
	Port                int    `mapstructure:"port" yaml:"port"`
	KnowledgeCollection string `mapstructure:"knowledge_collection" yaml:"knowledge_collection"`
	MemoryCollection    string `mapstructure:"memory_collection" yaml:"memory_collection"`
}

// EmbeddingConfig configures the embedding service.
type EmbeddingConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Dimension int    `mapstructure:"dimension" yaml:"dimension"`
}

// KnowledgeConfig configures the analysis knowledge base.
type KnowledgeConfig struct {
	Dir          string  `mapstructure:"dir" yaml:"dir"`
	UseRetrieval bool    `mapstructure:"use_retrieval" yaml:"use_retrieval"`
	TopK         int     `mapstructure:"top_k" yaml:"top_k"`
	MinScore     float32 `mapstructure:"min_score" yaml:"min_score"`
	MaxChars     int     `mapstructure:"max_chars" yaml:"max_chars"`
}

// MemoryConfig configures user memory and session persistence.
type MemoryConfig struct {
	Dir            string `mapstructure:"dir" yaml:"dir"`
	PersistSession bool   `mapstructure:"persist_session" yaml:"persist_session"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Endpoint:       "http://localhost:11434/v1",
			Model:          "qwen2.5:7b",
			TimeoutSeconds: 120,
			Temperature:    0.3,
			MaxTokens:      2048,
		},
		Agent: AgentConfig{
			MaxSteps:        5,
			Mode:            "two-phase",
			RecentTurns:     3,
			ReportStyle:     "focused",
			CacheTTLSeconds: 120,
		},
		Qdrant: QdrantConfig{
			Host:                "localhost",
			Port:                6334,
			KnowledgeCollection: "coinsage_knowledge",
			MemoryCollection:    "coinsage_memory",
		},
		Embedding: EmbeddingConfig{
			Endpoint:  "http://localhost:8080/embed",
			Dimension: 384,
		},
		Knowledge: KnowledgeConfig{
			Dir:          "knowledge",
			UseRetrieval: false,
			TopK:         5,
			MinScore:     0.35,
			MaxChars:     2800,
		},
		Memory: MemoryConfig{
			Dir:            "memory_data",
			PersistSession: true,
		},
	}
}

// Load reads configuration from the given file, or from the standard search
// paths when path is empty: ./config.local.yaml, ./config.yaml,
// ~/.coinsage/config.yaml. Environment variables prefixed with COINSAGE_
// override file values (e.g. COINSAGE_LLM_ENDPOINT). A missing file falls
// back to defaults without error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("COINSAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := readFromSearchPaths(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func readFromSearchPaths(v *viper.Viper) error {
	v.SetConfigName("config.local")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err == nil {
		return nil
	}

	v.SetConfigName("config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".coinsage"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("llm.endpoint", def.LLM.Endpoint)
	v.SetDefault("llm.model", def.LLM.Model)
	v.SetDefault("llm.timeout_seconds", def.LLM.TimeoutSeconds)
	v.SetDefault("llm.temperature", def.LLM.Temperature)
	v.SetDefault("llm.max_tokens", def.LLM.MaxTokens)
	v.SetDefault("agent.max_steps", def.Agent.MaxSteps)
	v.SetDefault("agent.mode", def.Agent.Mode)
	v.SetDefault("agent.recent_turns", def.Agent.RecentTurns)
	v.SetDefault("agent.report_style", def.Agent.ReportStyle)
	v.SetDefault("agent.cache_ttl_seconds", def.Agent.CacheTTLSeconds)
	v.SetDefault("qdrant.host", def.Qdrant.Host)
	v.SetDefault("qdrant.port", def.Qdrant.Port)
	v.SetDefault("qdrant.knowledge_collection", def.Qdrant.KnowledgeCollection)
	v.SetDefault("qdrant.memory_collection", def.Qdrant.MemoryCollection)
	v.SetDefault("embedding.endpoint", def.Embedding.Endpoint)
	v.SetDefault("embedding.dimension", def.Embedding.Dimension)
	v.SetDefault("knowledge.dir", def.Knowledge.Dir)
	v.SetDefault("knowledge.use_retrieval", def.Knowledge.UseRetrieval)
	v.SetDefault("knowledge.top_k", def.Knowledge.TopK)
	v.SetDefault("knowledge.min_score", def.Knowledge.MinScore)
	v.SetDefault("knowledge.max_chars", def.Knowledge.MaxChars)
	v.SetDefault("memory.dir", def.Memory.Dir)
	v.SetDefault("memory.persist_session", def.Memory.PersistSession)
}
