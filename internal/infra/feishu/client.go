package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher/callback"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
)

// Message represents a received Feishu message
type Message struct {
	ChatID     string
	MsgID      string
	MsgType    string    // text, post
	ChatType   string    // p2p (private), group
	Content    string    // Text with mention placeholders replaced by "Name, "
	Sender     *Sender   // Message sender info
	Mentions   []Mention // Users mentioned in this message
	CreateTime int64     // Message creation time (milliseconds Unix timestamp from Feishu)
}

// Sender represents the message sender
type Sender struct {
	SenderID   string // open_id
	SenderType string // user, app
	TenantKey  string
}

// Mention is a user mentioned in a message
type Mention struct {
	Key    string // Placeholder in the raw text, e.g. @_user_1
	Name   string
	OpenID string
}

// Markup renders the mention for card markdown
func (m Mention) Markup() string {
	if m.OpenID == "" {
		return m.Name
	}
	return fmt.Sprintf("<at id=%s></at>", m.OpenID)
}

// CardAction is a button press on an interactive card
type CardAction struct {
	OperatorID string // open_id of the user who pressed
	ChatID     string
	MessageID  string
	Value      map[string]any
}

// MessageHandler is the callback for received messages
type MessageHandler func(msg *Message)

// CardActionHandler handles a card action and returns the toast text
type CardActionHandler func(action *CardAction) string

// Client is the Feishu API client
type Client struct {
	appID        string
	appSecret    string
	larkCli      *lark.Client
	wsCli        *larkws.Client
	onMessage    MessageHandler
	onCardAction CardActionHandler
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewClient creates a new Feishu client
func NewClient(appID, appSecret string) *Client {
	return &Client{
		appID:     appID,
		appSecret: appSecret,
		larkCli:   lark.NewClient(appID, appSecret),
	}
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.onMessage = handler
}

// OnCardAction sets the card action handler
func (c *Client) OnCardAction(handler CardActionHandler) {
	c.onCardAction = handler
}

// Start connects to Feishu via WebSocket and starts listening for events
func (c *Client) Start() error {
	c.ctx, c.cancel = context.WithCancel(context.Background())

	// Register event handlers
	// Note: Must return quickly so SDK can send ACK, otherwise Feishu will retry due to timeout
	eventHandler := c.newDispatcher("", "")

	// Create WebSocket client
	c.wsCli = larkws.NewClient(c.appID, c.appSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	fmt.Println("[Feishu] Starting WebSocket connection...")

	// Start WebSocket (blocking)
	return c.wsCli.Start(c.ctx)
}

// Stop disconnects from Feishu
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Client) newDispatcher(verificationToken, encryptKey string) *dispatcher.EventDispatcher {
	d := dispatcher.NewEventDispatcher(verificationToken, encryptKey)
	d.OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
		// Process message asynchronously, return immediately to let SDK send ACK
		go c.handleMessage(event)
		return nil
	})
	d.OnP2CardActionTrigger(c.handleCardAction)
	return d
}

// handleMessage processes incoming Feishu messages
func (c *Client) handleMessage(event *larkim.P2MessageReceiveV1) {
	if event == nil || event.Event == nil || event.Event.Message == nil {
		return
	}
	rawMsg := event.Event.Message

	// Filter out messages sent by the bot itself to prevent infinite loops
	if event.Event.Sender != nil && event.Event.Sender.SenderType != nil {
		if *event.Event.Sender.SenderType == "app" {
			return
		}
	}

	msg := &Message{
		ChatID:   deref(rawMsg.ChatId),
		MsgID:    deref(rawMsg.MessageId),
		MsgType:  deref(rawMsg.MessageType),
		ChatType: deref(rawMsg.ChatType),
	}

	// Parse create time (milliseconds Unix timestamp)
	if ts, err := strconv.ParseInt(deref(rawMsg.CreateTime), 10, 64); err == nil {
		msg.CreateTime = ts
	}

	// Parse sender info
	if event.Event.Sender != nil {
		msg.Sender = &Sender{
			SenderType: deref(event.Event.Sender.SenderType),
			TenantKey:  deref(event.Event.Sender.TenantKey),
		}
		if event.Event.Sender.SenderId != nil {
			msg.Sender.SenderID = deref(event.Event.Sender.SenderId.OpenId)
		}
	}

	// Parse mentions
	for _, m := range rawMsg.Mentions {
		if m == nil {
			continue
		}
		mention := Mention{Key: deref(m.Key), Name: deref(m.Name)}
		if m.Id != nil {
			mention.OpenID = deref(m.Id.OpenId)
		}
		msg.Mentions = append(msg.Mentions, mention)
	}

	switch msg.MsgType {
	case "text":
		msg.Content = parseTextContent(deref(rawMsg.Content), msg.Mentions)
	case "post":
		msg.Content = parsePostContent(deref(rawMsg.Content), msg.Mentions)
	default:
		// Unsupported message type
		fmt.Printf("[Feishu] Unsupported message type: %s\n", msg.MsgType)
		return
	}

	fmt.Printf("[Feishu] Received %s from %s chat %s: %s\n", msg.MsgType, msg.ChatType, msg.ChatID, truncate(msg.Content, 50))

	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

func (c *Client) handleCardAction(_ context.Context, event *callback.CardActionTriggerEvent) (*callback.CardActionTriggerResponse, error) {
	if event == nil || event.Event == nil || event.Event.Action == nil {
		return cardToast("info", "Invalid action"), nil
	}

	action := &CardAction{Value: event.Event.Action.Value}
	if event.Event.Operator != nil {
		action.OperatorID = strings.TrimSpace(event.Event.Operator.OpenID)
	}
	if event.Event.Context != nil {
		action.ChatID = strings.TrimSpace(event.Event.Context.OpenChatID)
		action.MessageID = strings.TrimSpace(event.Event.Context.OpenMessageID)
	}

	if c.onCardAction == nil {
		return cardToast("info", "Not ready"), nil
	}
	return cardToast("success", c.onCardAction(action)), nil
}

func cardToast(kind, content string) *callback.CardActionTriggerResponse {
	return &callback.CardActionTriggerResponse{
		Toast: &callback.Toast{
			Type:    kind,
			Content: content,
		},
	}
}

// parseTextContent extracts text from a text message and rewrites mention
// placeholders (@_user_1) as "Name, "
func parseTextContent(content string, mentions []Mention) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}
	return replaceMentions(parsed.Text, mentions)
}

// parsePostContent extracts text from a rich text message
func parsePostContent(content string, mentions []Mention) string {
	var parsed struct {
		Title   string `json:"title"`
		Content [][]struct {
			Tag    string `json:"tag"`
			Text   string `json:"text,omitempty"`
			UserID string `json:"user_id,omitempty"` // for "at" tags
		} `json:"content"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}

	var lines []string
	if parsed.Title != "" {
		lines = append(lines, parsed.Title)
	}

	for _, line := range parsed.Content {
		var sb strings.Builder
		for _, elem := range line {
			switch elem.Tag {
			case "text":
				sb.WriteString(elem.Text)
			case "at":
				sb.WriteString(elem.UserID)
			}
		}
		if sb.Len() > 0 {
			lines = append(lines, sb.String())
		}
	}

	return replaceMentions(strings.Join(lines, "\n"), mentions)
}

// replaceMentions replaces mention placeholders with "Name, " so the
// classifier sees names it can list as invitees
func replaceMentions(text string, mentions []Mention) string {
	for _, m := range mentions {
		if m.Key == "" {
			continue
		}
		text = strings.ReplaceAll(text, m.Key, m.Name+",")
		if m.OpenID != "" {
			text = strings.ReplaceAll(text, m.OpenID, m.Name+",")
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// SendText sends a text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)
	return c.send(ctx, chatID, larkim.MsgTypeText, string(contentJSON))
}

// SendCard sends an interactive card to a chat
func (c *Client) SendCard(ctx context.Context, chatID string, card map[string]any) error {
	contentJSON, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("encode card: %w", err)
	}
	return c.send(ctx, chatID, larkim.MsgTypeInteractive, string(contentJSON))
}

func (c *Client) send(ctx context.Context, chatID, msgType, content string) error {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send %s failed: %w", msgType, err)
	}
	if !resp.Success() {
		return fmt.Errorf("send %s error: %s", msgType, resp.Msg)
	}

	fmt.Printf("[Feishu] %s message sent to %s\n", msgType, chatID)
	return nil
}

// Helper functions

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
