package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		configJSON  string
		expectError bool
		expected    *Config
	}{
		{
			name: "full config",
			configJSON: `{
				"embedding": {"provider": "openai", "model": "text-embedding-3-small", "base_url": "http://localhost:11434"},
				"summarization": {"provider": "openai", "model": "gpt-4o-mini", "base_url": "http://localhost:11434"},
				"projection": {"provider": "openai", "model": "", "base_url": "http://localhost:11434"}
			}`,
			expectError: false,
			expected: &Config{
				Embedding:     ServiceConfig{Provider: "openai", Model: "text-embedding-3-small", BaseURL: "http://localhost:11434"},
				Summarization: ServiceConfig{Provider: "openai", Model: "gpt-4o-mini", BaseURL: "http://localhost:11434"},
				Projection:    ServiceConfig{Provider: "openai", Model: "", BaseURL: "http://localhost:11434"},
			},
		},
		{
			name:        "invalid json",
			configJSON:  `{"invalid": json}`,
			expectError: true,
		},
		{
			name:        "empty config merges into defaults",
			configJSON:  `{}`,
			expectError: false,
			expected:    Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile, err := os.CreateTemp("", "config_test_*.json")
			if err != nil {
				t.Fatalf("failed to create temp file: %v", err)
			}
			defer os.Remove(tmpFile.Name())

			if _, err := tmpFile.WriteString(tt.configJSON); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			tmpFile.Close()

			config, err := LoadConfig(tmpFile.Name())

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if tt.expected != nil && *config != *tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, config)
			}
		})
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	config, err := LoadConfig("nonexistent.json")
	if err != nil {
		t.Errorf("expected no error for missing file, got: %v", err)
	}
	if config == nil || *config != *Default() {
		t.Errorf("expected default config for missing file, got: %+v", config)
	}
}

func TestUsesDefaultProvider(t *testing.T) {
	if !Default().UsesDefaultProvider() {
		t.Errorf("expected Default() to require a credential")
	}

	local := &Config{
		Embedding:     ServiceConfig{Provider: "ollama", Model: "nomic-embed-text", BaseURL: "http://localhost:11434"},
		Summarization: ServiceConfig{Provider: "ollama", Model: "llama3", BaseURL: "http://localhost:11434"},
		Projection:    ServiceConfig{Provider: "ollama", BaseURL: "http://localhost:11434"},
	}
	if local.UsesDefaultProvider() {
		t.Errorf("expected a fully local config not to require a credential")
	}

	mixed := Default()
	mixed.Embedding.BaseURL = "http://localhost:11434"
	if !mixed.UsesDefaultProvider() {
		t.Errorf("expected a config that still defaults summarization to OpenAI to require a credential")
	}
}
