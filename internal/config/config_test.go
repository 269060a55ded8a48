package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLM.Endpoint != "http://localhost:11434/v1" {
		t.Errorf("LLM.Endpoint = %q", cfg.LLM.Endpoint)
	}
	if cfg.LLM.Model != "qwen2.5:7b" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Agent.MaxSteps != 5 || cfg.Agent.Mode != "two-phase" {
		t.Errorf("Agent = %+v", cfg.Agent)
	}
	if cfg.Agent.ReportStyle != "focused" {
		t.Errorf("Agent.ReportStyle = %q", cfg.Agent.ReportStyle)
	}
	if cfg.Qdrant.Port != 6334 || cfg.Qdrant.KnowledgeCollection != "coinsage_knowledge" {
		t.Errorf("Qdrant = %+v", cfg.Qdrant)
	}
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("Embedding.Dimension = %d", cfg.Embedding.Dimension)
	}
	if !cfg.Memory.PersistSession {
		t.Error("Memory.PersistSession should default to true")
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  model: llama3:8b
agent:
  max_steps: 8
  mode: plan-solve
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.Model != "llama3:8b" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Agent.MaxSteps != 8 || cfg.Agent.Mode != "plan-solve" {
		t.Errorf("Agent = %+v", cfg.Agent)
	}
	// Values the file does not set keep their defaults.
	if cfg.LLM.Endpoint != "http://localhost:11434/v1" {
		t.Errorf("LLM.Endpoint = %q, want default", cfg.LLM.Endpoint)
	}
	if cfg.Qdrant.Host != "localhost" {
		t.Errorf("Qdrant.Host = %q, want default", cfg.Qdrant.Host)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error when an explicit config file is missing")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COINSAGE_LLM_MODEL", "mistral:7b")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  model: llama3:8b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.Model != "mistral:7b" {
		t.Errorf("LLM.Model = %q, want the env override", cfg.LLM.Model)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Agent.MaxSteps = 7
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Agent.MaxSteps != 7 {
		t.Errorf("Agent.MaxSteps = %d, want 7", loaded.Agent.MaxSteps)
	}
	if loaded.LLM.Model != cfg.LLM.Model {
		t.Errorf("LLM.Model = %q, want %q", loaded.LLM.Model, cfg.LLM.Model)
	}
}
