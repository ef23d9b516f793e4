package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ServiceConfig addresses one external collaborator (embedding,
// summarization, or projection), mirroring the teacher's LLMConfig shape.
type ServiceConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
}

// Config is gcommit's on-disk configuration, loaded once at startup.
type Config struct {
	Embedding     ServiceConfig `json:"embedding"`
	Summarization ServiceConfig `json:"summarization"`
	Projection    ServiceConfig `json:"projection"`
}

// Default returns the built-in configuration used when no config file is
// present on disk. A missing file is not an error: the CLI falls back to
// this rather than failing, per spec.md §7.
func Default() *Config {
	return &Config{
		Embedding: ServiceConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
			BaseURL:  "https://api.openai.com",
		},
		Summarization: ServiceConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			BaseURL:  "https://api.openai.com",
		},
		Projection: ServiceConfig{
			Provider: "openai",
			Model:    "",
			BaseURL:  "https://api.openai.com",
		},
	}
}

// LoadConfig reads filename and parses it as JSON. A missing file yields
// Default() with a nil error; a file that exists but is malformed is
// fatal, matching spec.md §7's distinction between absent and invalid
// configuration.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// UsesDefaultProvider reports whether embedding or summarization is still
// pointed at the default hosted OpenAI endpoint. The caller treats this as
// "a real credential is required" (spec.md §7's fatal "missing credential"
// case); a config file that redirects both to a non-default base_url (e.g.
// a local Ollama-style endpoint) is assumed not to need one.
func (c *Config) UsesDefaultProvider() bool {
	def := Default()
	return c.Embedding.BaseURL == def.Embedding.BaseURL || c.Summarization.BaseURL == def.Summarization.BaseURL
}

// ResolveAPIKey looks up the OpenAI-compatible API key the same way the
// original gcommit does: OPENAI_API_KEY first, then the git config key
// custom.openaiApiKey. Returns an empty string if neither is set; the
// caller is responsible for treating that as fatal when the configured
// provider requires one (see UsesDefaultProvider).
func ResolveAPIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	cmd := exec.Command("git", "config", "--get", "custom.openaiApiKey")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return ""
	}

	return strings.TrimSpace(out.String())
}
