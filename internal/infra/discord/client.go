package discord

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const customIDPrefix = "confirm"

// Message represents a received Discord message
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string // Mentions rewritten as "Name, "
	IsDM      bool
	Mentions  map[string]string // name -> <@id>
	Timestamp time.Time
}

// ButtonPress is a click on a confirmation button
type ButtonPress struct {
	UserID        string
	ChannelID     string
	Decision      string
	CorrelationID string
}

// MessageHandler is the callback for received messages
type MessageHandler func(msg *Message)

// ButtonHandler handles a button press and returns the text that replaces the card
type ButtonHandler func(press *ButtonPress) string

// Client is the Discord bot client
type Client struct {
	session  *discordgo.Session
	botID    string
	onMsg    MessageHandler
	onButton ButtonHandler
}

// NewClient creates a new Discord client
func NewClient(token string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	c := &Client{session: session}
	session.AddHandler(c.handleMessage)
	session.AddHandler(c.handleInteraction)

	// Direct messages and their content only
	session.Identify.Intents = discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	return c, nil
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.onMsg = handler
}

// OnButton sets the button handler
func (c *Client) OnButton(handler ButtonHandler) {
	c.onButton = handler
}

// Start connects to Discord and begins listening
func (c *Client) Start() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	// Get bot's user ID for self-filtering
	c.botID = c.session.State.User.ID
	fmt.Printf("[Discord] Connected as %s\n", c.session.State.User.Username)
	return nil
}

// Stop disconnects from Discord
func (c *Client) Stop() error {
	return c.session.Close()
}

// SendText sends a plain message
func (c *Client) SendText(channelID, text string) error {
	if _, err := c.session.ChannelMessageSend(channelID, text); err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	fmt.Printf("[Discord] Message sent to %s\n", channelID)
	return nil
}

// SendConfirmation sends a message with accept and reject buttons
func (c *Client) SendConfirmation(channelID, title, correlationID, acceptLabel, rejectLabel string) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    title,
		Components: ConfirmationComponents(correlationID, acceptLabel, rejectLabel),
	})
	if err != nil {
		return fmt.Errorf("send confirmation failed: %w", err)
	}
	fmt.Printf("[Discord] Confirmation sent to %s\n", channelID)
	return nil
}

// ConfirmationComponents builds the button row for a confirmation
func ConfirmationComponents(correlationID, acceptLabel, rejectLabel string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    acceptLabel,
					Style:    discordgo.SuccessButton,
					CustomID: CustomID("accept", correlationID),
				},
				discordgo.Button{
					Label:    rejectLabel,
					Style:    discordgo.DangerButton,
					CustomID: CustomID("reject", correlationID),
				},
			},
		},
	}
}

// CustomID encodes a decision and correlation ID into a button custom id
func CustomID(decision, correlationID string) string {
	return customIDPrefix + ":" + decision + ":" + correlationID
}

// ParseCustomID decodes a button custom id
func ParseCustomID(id string) (decision, correlationID string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// handleMessage processes incoming Discord messages
func (c *Client) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == c.botID || m.Author.Bot {
		return
	}

	content, mentions := RewriteMentions(m.Content, m.Mentions)
	msg := &Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   content,
		IsDM:      m.GuildID == "",
		Mentions:  mentions,
		Timestamp: m.Timestamp,
	}

	fmt.Printf("[Discord] Received from %s (dm=%v): %s\n", msg.AuthorID, msg.IsDM, truncate(msg.Content, 50))

	if c.onMsg != nil {
		c.onMsg(msg)
	}
}

func (c *Client) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	decision, correlationID, ok := ParseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	press := &ButtonPress{
		ChannelID:     i.ChannelID,
		Decision:      decision,
		CorrelationID: correlationID,
	}
	if i.User != nil {
		press.UserID = i.User.ID
	} else if i.Member != nil && i.Member.User != nil {
		press.UserID = i.Member.User.ID
	}

	text := ""
	if c.onButton != nil {
		text = c.onButton(press)
	}

	// Replace the buttons so the card cannot be pressed twice. A decision that
	// fails with the action still pending is followed by a new card.
	content := ""
	if i.Message != nil {
		content = i.Message.Content
	}
	if text != "" {
		content += "\n" + text
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		fmt.Printf("[Discord] Failed to respond to interaction: %v\n", err)
	}
}

var mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)

// RewriteMentions replaces user mentions with "Name, " and returns the
// name -> mention markup map for this message
func RewriteMentions(content string, users []*discordgo.User) (string, map[string]string) {
	names := make(map[string]string, len(users))
	for _, u := range users {
		if u == nil {
			continue
		}
		name := u.GlobalName
		if name == "" {
			name = u.Username
		}
		names[u.ID] = name
	}

	mentions := make(map[string]string)
	out := mentionPattern.ReplaceAllStringFunc(content, func(tag string) string {
		id := mentionPattern.FindStringSubmatch(tag)[1]
		name, ok := names[id]
		if !ok {
			return tag
		}
		mentions[name] = "<@" + id + ">"
		return name + ", "
	})
	return strings.Join(strings.Fields(out), " "), mentions
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
