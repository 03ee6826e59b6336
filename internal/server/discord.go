package server

import (
	"context"
	"fmt"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/infra/discord"
)

// DiscordServer connects the Discord gateway to the conversation service
type DiscordServer struct {
	client  *discord.Client
	inbox   *Inbox
	ackText string
}

// NewDiscordServer creates a new Discord server
func NewDiscordServer(client *discord.Client, inbox *Inbox, ackText string) *DiscordServer {
	s := &DiscordServer{client: client, inbox: inbox, ackText: ackText}
	client.OnMessage(s.handleMessage)
	client.OnButton(s.handleButton)
	return s
}

// Name identifies the gateway
func (s *DiscordServer) Name() string {
	return "discord"
}

// Start connects to Discord and blocks until ctx is canceled
func (s *DiscordServer) Start(ctx context.Context) error {
	if err := s.client.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop disconnects from Discord
func (s *DiscordServer) Stop() {
	if err := s.client.Stop(); err != nil {
		fmt.Printf("[Discord] Close error: %v\n", err)
	}
}

func (s *DiscordServer) handleMessage(msg *discord.Message) {
	in := &domain.InboundMessage{
		ID:         msg.ID,
		SenderID:   msg.AuthorID,
		ChannelID:  msg.ChannelID,
		Text:       msg.Content,
		ChatType:   domain.ChatTypeGroup,
		Mentions:   domain.Mentions(msg.Mentions),
		CreateTime: msg.Timestamp,
	}
	if msg.IsDM {
		in.ChatType = domain.ChatTypeP2P
	}
	s.inbox.Accept(in)
}

func (s *DiscordServer) handleButton(press *discord.ButtonPress) string {
	if err := s.inbox.Decide(press.UserID, press.CorrelationID, press.ChannelID, press.Decision); err != nil {
		fmt.Printf("[Server] Button press rejected: %v\n", err)
		return ""
	}
	return s.ackText
}
