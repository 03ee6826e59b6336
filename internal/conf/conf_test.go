package conf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/carokun/sachathescheduler/internal/biz/usecase"
)

const testSecret = `{"web":{"client_id":"cid","client_secret":"shh","redirect_uris":["https://bot.example/connect/callback"]}}`

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHAT_PLATFORM", "CLASSIFIER", "PUBLIC_BASE_URL", "HTTP_ADDR", "PORT", "TIMEZONE",
		"APIAI_TOKEN", "OPENAI_API_KEY", "DISCORD_BOT_TOKEN", "CLASSIFIER_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("FEISHU_APP_ID", "cli_a")
	t.Setenv("FEISHU_APP_SECRET", "secret")
	t.Setenv("CLIENT_SECRET", testSecret)
	t.Setenv("APIAI_TOKEN", "tok")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "accounts.db"))
	t.Setenv("MESSAGES_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg := LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}
	if cfg.Platform != PlatformFeishu {
		t.Errorf("Expected platform feishu, got %s", cfg.Platform)
	}
	if cfg.Classifier.Kind != ClassifierDialogflow {
		t.Errorf("Expected dialogflow classifier, got %s", cfg.Classifier.Kind)
	}
	if cfg.HTTP.Addr != ":3000" {
		t.Errorf("Expected :3000, got %s", cfg.HTTP.Addr)
	}
	if cfg.Google.PublicBaseURL != "https://bot.example" {
		t.Errorf("Expected base URL from redirect_uris, got %s", cfg.Google.PublicBaseURL)
	}
	if cfg.Google.RedirectURL() != "https://bot.example/connect/callback" {
		t.Errorf("Unexpected redirect URL %s", cfg.Google.RedirectURL())
	}
	if cfg.Timezone != "America/Los_Angeles" {
		t.Errorf("Expected default timezone, got %s", cfg.Timezone)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("PUBLIC_BASE_URL", "https://sched.example/")
	t.Setenv("CLASSIFIER_TIMEOUT_SECONDS", "3")

	cfg := LoadFromEnv()
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.Google.PublicBaseURL != "https://sched.example" {
		t.Errorf("Expected trimmed base URL, got %s", cfg.Google.PublicBaseURL)
	}
	if cfg.Classifier.Timeout.Seconds() != 3 {
		t.Errorf("Expected 3s timeout, got %v", cfg.Classifier.Timeout)
	}
}

func TestLoadFromEnv_ClientSecretFile(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "client_secret.json")
	if err := os.WriteFile(path, []byte(testSecret), 0600); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	t.Setenv("CLIENT_SECRET", path)

	cfg := LoadFromEnv()
	if string(cfg.Google.ClientSecret) != testSecret {
		t.Errorf("Expected secret loaded from file, got %s", cfg.Google.ClientSecret)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		set   map[string]string
		field string
	}{
		{"missing feishu", map[string]string{"FEISHU_APP_ID": ""}, "FEISHU_APP_ID/FEISHU_APP_SECRET"},
		{"missing discord token", map[string]string{"CHAT_PLATFORM": "discord"}, "DISCORD_BOT_TOKEN"},
		{"unknown platform", map[string]string{"CHAT_PLATFORM": "irc"}, "CHAT_PLATFORM"},
		{"missing secret", map[string]string{"CLIENT_SECRET": ""}, "CLIENT_SECRET"},
		{"missing openai key", map[string]string{"CLASSIFIER": "openai"}, "OPENAI_API_KEY"},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.set {
				t.Setenv(k, v)
			}

			err := LoadFromEnv().Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, ce.Field)
			}
		})
	}
}

func TestLoadMessagesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	yaml := "bot:\n  busy: \"Finish the last one first!\"\n  accept_label: \"Good\"\nclassifier:\n  system_prompt: \"Today is %s in %s.\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	cfg, err := LoadMessagesConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	msgs := cfg.ToBotMessages()
	if msgs.Busy != "Finish the last one first!" {
		t.Errorf("Expected custom busy text, got %q", msgs.Busy)
	}
	if msgs.AcceptLabel != "Good" {
		t.Errorf("Expected accept label Good, got %q", msgs.AcceptLabel)
	}
	if msgs.Canceled != usecase.DefaultBotMessages.Canceled {
		t.Errorf("Expected default cancel text, got %q", msgs.Canceled)
	}
	if cfg.Classifier.SystemPrompt != "Today is %s in %s." {
		t.Errorf("Unexpected system prompt %q", cfg.Classifier.SystemPrompt)
	}
}

func TestLoadMessagesConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	if err := os.WriteFile(path, []byte("bot: [unclosed"), 0600); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := LoadMessagesConfig(path); err == nil {
		t.Error("Expected parse error")
	}
}
