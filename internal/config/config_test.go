package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
llm:
  model: "gemini-1.5-flash"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.LLM.Model != "gemini-1.5-flash" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != DefaultLLMBaseURL {
		t.Errorf("LLM.BaseURL = %q, want default", cfg.LLM.BaseURL)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunking.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d", cfg.Chunking.ChunkSize)
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyDefaults_sessionConstants(t *testing.T) {
	cfg := Default()
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"chunk size", cfg.Chunking.ChunkSize, 800},
		{"chunk overlap", cfg.Chunking.ChunkOverlap, 120},
		{"ocr min chars", cfg.Ingest.OCRMinChars, 10},
		{"ocr dpi", cfg.Ingest.OCRDPI, float64(300)},
		{"top k", cfg.Retrieval.SimilarityTopK, 5},
		{"memory tokens", cfg.Chat.MemoryTokenLimit, 1000},
		{"max upload", cfg.Ingest.MaxUploadBytes, int64(200 * 1024 * 1024)},
		{"collection", cfg.Retrieval.CollectionName, "user_session"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestApplyDefaults_keepsExplicitWeights(t *testing.T) {
	cfg := &Config{Retrieval: RetrievalConfig{SemanticWeight: 1}}
	ApplyDefaults(cfg)
	if cfg.Retrieval.KeywordWeight != 0 || cfg.Retrieval.SemanticWeight != 1 {
		t.Errorf("weights overwritten: %+v", cfg.Retrieval)
	}
}

func TestLoad_expandPathRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  file: "./logs/pdfchat.log"
watch:
  inbox: "inbox"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "logs", "pdfchat.log"); cfg.Logging.File != want {
		t.Errorf("Logging.File = %q, want %q", cfg.Logging.File, want)
	}
	if want := filepath.Join(dir, "inbox"); cfg.Watch.Inbox != want {
		t.Errorf("Watch.Inbox = %q, want %q", cfg.Watch.Inbox, want)
	}
	if cfg.Embedding.ModelPath != "" {
		t.Errorf("empty ModelPath should stay empty, got %q", cfg.Embedding.ModelPath)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Server.Port = 9999
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("Port = %d", loaded.Server.Port)
	}
}

func TestLLMConfig_APIKey(t *testing.T) {
	t.Setenv("PDFCHAT_TEST_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	c := LLMConfig{APIKeyEnv: "PDFCHAT_TEST_KEY"}
	if _, err := c.APIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	t.Setenv("GOOGLE_API_KEY", "google")
	if k, _ := c.APIKey(); k != "google" {
		t.Errorf("fallback key = %q", k)
	}

	t.Setenv("PDFCHAT_TEST_KEY", "primary")
	if k, _ := c.APIKey(); k != "primary" {
		t.Errorf("primary key = %q", k)
	}

	c.SetAPIKey("override")
	if k, _ := c.APIKey(); k != "override" {
		t.Errorf("override key = %q", k)
	}
}
