package main

import (
	"testing"
)

func TestLoadEnvironmentConfigDefaults(t *testing.T) {
	t.Setenv("SALAMATBOT_STATE_DIR", "")
	t.Setenv("PORT", "")
	t.Setenv("DEBUG", "")

	config := loadEnvironmentConfig()

	if config.StateDir != DefaultStateDir {
		t.Errorf("StateDir = %q, want %q", config.StateDir, DefaultStateDir)
	}
	if config.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", config.Port, DefaultPort)
	}
}

func TestLoadEnvironmentConfigFromEnv(t *testing.T) {
	t.Setenv("SALAMATBOT_STATE_DIR", "/tmp/salamatbot_test")
	t.Setenv("PORT", "3000")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("MODEL_NAME", "openai/gpt-4o")

	config := loadEnvironmentConfig()

	if config.StateDir != "/tmp/salamatbot_test" {
		t.Errorf("StateDir = %q", config.StateDir)
	}
	if config.Port != 3000 {
		t.Errorf("Port = %d, want 3000", config.Port)
	}
	if config.BotToken != "123:abc" || config.OpenRouterKey != "sk-test" {
		t.Error("credentials not read from environment")
	}
	if config.ModelName != "openai/gpt-4o" {
		t.Errorf("ModelName = %q", config.ModelName)
	}
}

func TestBuildGenAIOptions(t *testing.T) {
	key := "sk-test"
	model := "openai/gpt-4o"

	flags := Flags{
		openRouterKey: &key,
		model:         &model,
		config:        Config{OpenRouterURL: "https://openrouter.ai/api/v1"},
	}
	if got := len(buildGenAIOptions(flags)); got != 3 {
		t.Errorf("option count = %d, want 3 (key, base URL, model)", got)
	}

	empty := ""
	flags = Flags{openRouterKey: &key, model: &empty, config: Config{}}
	if got := len(buildGenAIOptions(flags)); got != 1 {
		t.Errorf("option count = %d, want 1 (key only)", got)
	}
}

func TestBuildFlowOptions(t *testing.T) {
	flags := Flags{config: Config{
		WelcomeImageURL: "https://example.com/welcome.jpg",
		CatalogURL:      "https://example.com/catalog",
	}}
	if got := len(buildFlowOptions(flags)); got != 2 {
		t.Errorf("option count = %d, want 2", got)
	}

	flags = Flags{config: Config{}}
	if got := len(buildFlowOptions(flags)); got != 0 {
		t.Errorf("option count = %d, want 0", got)
	}
}
