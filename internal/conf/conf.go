package conf

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Chat platforms
const (
	PlatformFeishu  = "feishu"
	PlatformDiscord = "discord"
)

// Intent classifiers
const (
	ClassifierDialogflow = "dialogflow"
	ClassifierOpenAI     = "openai"
)

// CallbackPath is where the provider redirects after consent
const CallbackPath = "/connect/callback"

// Config represents application configuration
type Config struct {
	// Chat platform: feishu or discord
	Platform string

	Feishu  FeishuConfig
	Discord DiscordConfig

	// Google OAuth and Calendar
	Google GoogleConfig

	// Intent classifier
	Classifier ClassifierConfig

	// Account store
	Store StoreConfig

	// HTTP server for the link flow, card callbacks and metrics
	HTTP HTTPConfig

	// Timezone used when classifying dates
	Timezone string

	// Bot copy (loaded from YAML)
	Messages *MessagesConfig

	// Debug mode
	Debug bool
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID             string
	AppSecret         string
	VerificationToken string // Only needed for the HTTP card callback
	EncryptKey        string
}

// DiscordConfig contains Discord configuration
type DiscordConfig struct {
	BotToken string
}

// GoogleConfig contains Google OAuth configuration
type GoogleConfig struct {
	ClientSecret    []byte // Client secret JSON document
	PublicBaseURL   string // Externally reachable base URL of the HTTP server
	StateSecret     string
	StateMaxAge     time.Duration
	CalendarTimeout time.Duration
}

// RedirectURL returns the OAuth callback URL
func (c *GoogleConfig) RedirectURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + CallbackPath
}

// ClassifierConfig contains intent classifier configuration
type ClassifierConfig struct {
	Kind          string // dialogflow or openai
	APIAIToken    string
	APIAILang     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	Timeout       time.Duration
}

// StoreConfig contains account store configuration
type StoreConfig struct {
	DBPath string
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	Addr      string
	AdminAddr string // Read-only admin API, keep it off the public interface
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Account DB path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".scheduler", "accounts.db")
	}

	// HTTP listen address
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":3000"
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		}
	}

	adminAddr := os.Getenv("ADMIN_ADDR")
	if adminAddr == "" {
		adminAddr = "127.0.0.1:3001"
	}

	platform := strings.ToLower(os.Getenv("CHAT_PLATFORM"))
	if platform == "" {
		platform = PlatformFeishu
	}

	classifier := strings.ToLower(os.Getenv("CLASSIFIER"))
	if classifier == "" {
		classifier = ClassifierDialogflow
		if os.Getenv("APIAI_TOKEN") == "" && os.Getenv("OPENAI_API_KEY") != "" {
			classifier = ClassifierOpenAI
		}
	}

	timezone := os.Getenv("TIMEZONE")
	if timezone == "" {
		timezone = "America/Los_Angeles"
	}

	clientSecret := loadClientSecret(os.Getenv("CLIENT_SECRET"))
	publicBaseURL := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	if publicBaseURL == "" {
		publicBaseURL = baseURLFromSecret(clientSecret)
	}

	// Load bot copy from YAML
	messages, err := LoadMessagesConfig(os.Getenv("MESSAGES_CONFIG_PATH"))
	if err != nil {
		messages = DefaultMessagesConfig()
	}

	return &Config{
		Platform: platform,
		Feishu: FeishuConfig{
			AppID:             os.Getenv("FEISHU_APP_ID"),
			AppSecret:         os.Getenv("FEISHU_APP_SECRET"),
			VerificationToken: os.Getenv("FEISHU_VERIFICATION_TOKEN"),
			EncryptKey:        os.Getenv("FEISHU_ENCRYPT_KEY"),
		},
		Discord: DiscordConfig{
			BotToken: os.Getenv("DISCORD_BOT_TOKEN"),
		},
		Google: GoogleConfig{
			ClientSecret:    clientSecret,
			PublicBaseURL:   publicBaseURL,
			StateSecret:     os.Getenv("LINK_STATE_SECRET"),
			StateMaxAge:     envMinutes("LINK_STATE_MAX_AGE_MINUTES", 30),
			CalendarTimeout: envSeconds("CALENDAR_TIMEOUT_SECONDS", 15),
		},
		Classifier: ClassifierConfig{
			Kind:          classifier,
			APIAIToken:    os.Getenv("APIAI_TOKEN"),
			APIAILang:     os.Getenv("APIAI_LANG"),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			OpenAIModel:   os.Getenv("OPENAI_MODEL"),
			Timeout:       envSeconds("CLASSIFIER_TIMEOUT_SECONDS", 10),
		},
		Store: StoreConfig{
			DBPath: dbPath,
		},
		HTTP: HTTPConfig{
			Addr:      httpAddr,
			AdminAddr: adminAddr,
		},
		Timezone: timezone,
		Messages: messages,
		Debug:    os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Platform {
	case PlatformFeishu:
		if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
			return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required"}
		}
	case PlatformDiscord:
		if c.Discord.BotToken == "" {
			return &ConfigError{Field: "DISCORD_BOT_TOKEN", Message: "required"}
		}
	default:
		return &ConfigError{Field: "CHAT_PLATFORM", Message: "must be feishu or discord"}
	}

	if len(c.Google.ClientSecret) == 0 {
		return &ConfigError{Field: "CLIENT_SECRET", Message: "required"}
	}
	if !json.Valid(c.Google.ClientSecret) {
		return &ConfigError{Field: "CLIENT_SECRET", Message: "must be a client secret JSON document or a path to one"}
	}
	if c.Google.PublicBaseURL == "" {
		return &ConfigError{Field: "PUBLIC_BASE_URL", Message: "required when CLIENT_SECRET has no redirect_uris"}
	}

	switch c.Classifier.Kind {
	case ClassifierDialogflow:
		if c.Classifier.APIAIToken == "" {
			return &ConfigError{Field: "APIAI_TOKEN", Message: "required"}
		}
	case ClassifierOpenAI:
		if c.Classifier.OpenAIAPIKey == "" {
			return &ConfigError{Field: "OPENAI_API_KEY", Message: "required"}
		}
	default:
		return &ConfigError{Field: "CLASSIFIER", Message: "must be dialogflow or openai"}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return &ConfigError{Field: "TIMEZONE", Message: err.Error()}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// loadClientSecret accepts the JSON document itself or a path to it
func loadClientSecret(val string) []byte {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	if strings.HasPrefix(val, "{") {
		return []byte(val)
	}
	data, err := os.ReadFile(val)
	if err != nil {
		return []byte(val)
	}
	return data
}

// baseURLFromSecret derives the public base URL from the first redirect URI
func baseURLFromSecret(secret []byte) string {
	var doc map[string]struct {
		RedirectURIs []string `json:"redirect_uris"`
	}
	if err := json.Unmarshal(secret, &doc); err != nil {
		return ""
	}
	for _, key := range []string{"web", "installed"} {
		app, ok := doc[key]
		if !ok || len(app.RedirectURIs) == 0 {
			continue
		}
		u, err := url.Parse(app.RedirectURIs[0])
		if err != nil || u.Host == "" {
			return ""
		}
		return u.Scheme + "://" + u.Host
	}
	return ""
}

func envSeconds(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Second
}

func envMinutes(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Minute
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
