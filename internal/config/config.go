package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DefaultLLM string                    `toml:"default_llm"`
	LLMs       map[string]*LLMConfig     `toml:"llm"`
	Trace      TraceConfig               `toml:"trace"`
	Tools      ToolsConfig               `toml:"tools"`
	Profiles   map[string]*ProfileConfig `toml:"profile"`
}

type LLMConfig struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

type TraceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
}

type ToolsConfig struct {
	BraveAPIKey string `toml:"brave_api_key"`
}

type ProfileConfig struct {
	SystemPrompt string   `toml:"system_prompt"`
	Tools        []string `toml:"tools"`
}

func Load() (*Config, error) {
	cfg := &Config{
		DefaultLLM: "openai",
		LLMs: map[string]*LLMConfig{
			"openai": {
				Model:   "gpt-4.1-mini",
				BaseURL: "https://api.openai.com/v1",
			},
		},
	}

	path := configPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if llm, ok := cfg.LLMs["openai"]; ok && llm.APIKey == "" {
			llm.APIKey = key
		}
	}

	return cfg, nil
}

func configPath() string {
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "conduit", "config.toml")
}
