package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client is an OpenAI-compatible chat client used for intent classification
type Client struct {
	client *openai.Client
	model  string
	debug  bool
}

// Message is one chat turn
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Classification is the JSON object the model is asked to produce
type Classification struct {
	ActionIncomplete bool           `json:"action_incomplete"`
	Action           string         `json:"action"`
	Parameters       map[string]any `json:"parameters"`
	Speech           string         `json:"speech"`
}

// NewClient creates a new client. An empty baseURL uses api.openai.com.
func NewClient(apiKey, baseURL, model string) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// SetDebug logs raw model replies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Chat sends the conversation and returns the model's JSON reply
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1, // Low temperature for stable classification
		MaxTokens:   400,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	content := resp.Choices[0].Message.Content
	if c.debug {
		fmt.Printf("[OpenAI] %s\n", content)
	}
	return content, nil
}

// ParseClassification decodes the model output, tolerating code fences
func ParseClassification(content string) (*Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var c Classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &c); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}
	if c.Action == "" && !c.ActionIncomplete && c.Speech == "" {
		return nil, fmt.Errorf("decode classification: empty result")
	}
	return &c, nil
}

// DefaultSystemPrompt instructs the model to behave like a slot-filling agent.
// %s placeholders: today's date, timezone.
const DefaultSystemPrompt = `You are the language understanding component of a scheduling bot. Today is %s (timezone %s).

Classify the user's latest message, using the earlier turns of this conversation as context, and reply with ONLY a JSON object:
{"action_incomplete": bool, "action": string, "parameters": object, "speech": string}

## Actions
- "remind.add": the user wants a reminder. Parameters: "any" (what to be reminded of), "date" (YYYY-MM-DD).
- "meeting.add": the user wants a meeting. Parameters: "any" (topic), "date" (YYYY-MM-DD), "invitees" (array of names exactly as written).
- Anything else: use "input.unknown" or a short descriptive action and answer in "speech".

## Rules
1. Resolve relative dates ("tomorrow", "next friday") against today's date.
2. If a required parameter is missing, set "action_incomplete" to true and ask for it in "speech".
3. When complete, "speech" restates the request as a yes/no question, e.g. "Should I remind you to pay rent on 2024-03-10?". Keep invitee names unchanged.
4. Never invent dates or invitees.`
