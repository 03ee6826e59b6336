package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/carokun/sachathescheduler/internal/biz/usecase"
)

// MessagesConfig contains the bot copy and the classifier prompt loaded from YAML
type MessagesConfig struct {
	Bot        BotCopy          `yaml:"bot"`
	Classifier ClassifierPrompt `yaml:"classifier"`
}

// BotCopy contains user-facing texts
type BotCopy struct {
	LinkPrompt       string `yaml:"link_prompt"`
	Busy             string `yaml:"busy"`
	Canceled         string `yaml:"canceled"`
	Added            string `yaml:"added"`
	CalendarFailed   string `yaml:"calendar_failed"`
	Relink           string `yaml:"relink"`
	ClassifierDown   string `yaml:"classifier_down"`
	MissingDate      string `yaml:"missing_date"`
	Fallback         string `yaml:"fallback"`
	Failure          string `yaml:"failure"`
	LinkSucceeded    string `yaml:"link_succeeded"`
	LinkFailed       string `yaml:"link_failed"`
	AcceptLabel      string `yaml:"accept_label"`
	RejectLabel      string `yaml:"reject_label"`
	ConfirmSubmitted string `yaml:"confirm_submitted"`
}

// ClassifierPrompt contains the LLM classifier prompt
type ClassifierPrompt struct {
	// %s placeholders: today's date, timezone
	SystemPrompt string `yaml:"system_prompt"`
}

// LoadMessagesConfig loads bot copy from a YAML file
func LoadMessagesConfig(configPath string) (*MessagesConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/messages.yaml",
			"/etc/scheduler/messages.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "messages.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data = b
			loadedPath = p
			break
		}
	}

	if data == nil {
		fmt.Println("[Config] No messages.yaml found, using defaults")
		return DefaultMessagesConfig(), nil
	}

	fmt.Printf("[Config] Loading messages from: %s\n", loadedPath)

	var config MessagesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse messages.yaml: %w", err)
	}
	return &config, nil
}

// DefaultMessagesConfig returns the built-in copy
func DefaultMessagesConfig() *MessagesConfig {
	d := usecase.DefaultBotMessages
	return &MessagesConfig{
		Bot: BotCopy{
			LinkPrompt:       d.LinkPrompt,
			Busy:             d.Busy,
			Canceled:         d.Canceled,
			Added:            d.Added,
			CalendarFailed:   d.CalendarFailed,
			Relink:           d.Relink,
			ClassifierDown:   d.ClassifierDown,
			MissingDate:      d.MissingDate,
			Fallback:         d.Fallback,
			Failure:          d.Failure,
			LinkSucceeded:    d.LinkSucceeded,
			LinkFailed:       d.LinkFailed,
			AcceptLabel:      d.AcceptLabel,
			RejectLabel:      d.RejectLabel,
			ConfirmSubmitted: d.ConfirmSubmitted,
		},
	}
}

// ToBotMessages converts to usecase copy, filling empty fields with defaults
func (c *MessagesConfig) ToBotMessages() usecase.BotMessages {
	if c == nil {
		return usecase.DefaultBotMessages
	}
	b := c.Bot
	return usecase.BotMessages{
		LinkPrompt:       b.LinkPrompt,
		Busy:             b.Busy,
		Canceled:         b.Canceled,
		Added:            b.Added,
		CalendarFailed:   b.CalendarFailed,
		Relink:           b.Relink,
		ClassifierDown:   b.ClassifierDown,
		MissingDate:      b.MissingDate,
		Fallback:         b.Fallback,
		Failure:          b.Failure,
		LinkSucceeded:    b.LinkSucceeded,
		LinkFailed:       b.LinkFailed,
		AcceptLabel:      b.AcceptLabel,
		RejectLabel:      b.RejectLabel,
		ConfirmSubmitted: b.ConfirmSubmitted,
	}.WithDefaults()
}
