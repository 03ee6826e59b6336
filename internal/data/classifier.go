package data

import (
	"fmt"

	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/conf"
	"github.com/carokun/sachathescheduler/internal/infra/dialogflow"
	"github.com/carokun/sachathescheduler/internal/infra/openai"
)

// NewClassifier builds the configured intent classifier
func NewClassifier(cfg *conf.Config) repo.ClassifierRepo {
	switch cfg.Classifier.Kind {
	case conf.ClassifierOpenAI:
		client := openai.NewClient(cfg.Classifier.OpenAIAPIKey, cfg.Classifier.OpenAIBaseURL, cfg.Classifier.OpenAIModel)
		client.SetDebug(cfg.Debug)
		fmt.Println("[Data] Using LLM intent classifier")
		prompt := ""
		if cfg.Messages != nil {
			prompt = cfg.Messages.Classifier.SystemPrompt
		}
		return NewOpenAIRepo(client, prompt)
	default:
		fmt.Println("[Data] Using api.ai intent classifier")
		client := dialogflow.NewClient(cfg.Classifier.APIAIToken, cfg.Classifier.APIAILang)
		client.SetDebug(cfg.Debug)
		return NewDialogflowRepo(client)
	}
}
