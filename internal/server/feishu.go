package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/infra/feishu"
)

// FeishuServer connects the Feishu gateway to the conversation service
type FeishuServer struct {
	client   *feishu.Client
	inbox    *Inbox
	ackText  string
	failText string
}

// NewFeishuServer creates a new Feishu server
func NewFeishuServer(client *feishu.Client, inbox *Inbox, ackText string) *FeishuServer {
	s := &FeishuServer{
		client:   client,
		inbox:    inbox,
		ackText:  ackText,
		failText: "This request is no longer valid",
	}

	// Handlers are shared by the long connection and the HTTP card callback
	client.OnMessage(s.handleMessage)
	client.OnCardAction(s.handleCardAction)
	return s
}

// Name identifies the gateway
func (s *FeishuServer) Name() string {
	return "feishu"
}

// Start connects to Feishu and blocks until ctx is canceled.
// The websocket client does not return on its own once connected.
func (s *FeishuServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.client.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.client.Stop()
		return nil
	}
}

// Stop disconnects from Feishu
func (s *FeishuServer) Stop() {
	s.client.Stop()
}

// CardHandler serves card callbacks configured with a request URL
func (s *FeishuServer) CardHandler(verificationToken, encryptKey string) http.Handler {
	return s.client.CardCallbackHandler(verificationToken, encryptKey)
}

func (s *FeishuServer) handleMessage(msg *feishu.Message) {
	s.inbox.Accept(toInboundMessage(msg))
}

func (s *FeishuServer) handleCardAction(action *feishu.CardAction) string {
	err := s.inbox.Decide(
		action.OperatorID,
		feishu.ActionValue(action, feishu.ValueAccount),
		action.ChatID,
		feishu.ActionValue(action, feishu.ValueDecision),
	)
	if err != nil {
		fmt.Printf("[Server] Card action on %s rejected: %v\n", action.MessageID, err)
		return s.failText
	}
	return s.ackText
}

// toInboundMessage converts a Feishu message. Mentions were already rewritten
// as "Name," in the content; the map restores them in replies.
func toInboundMessage(msg *feishu.Message) *domain.InboundMessage {
	in := &domain.InboundMessage{
		ID:        msg.MsgID,
		ChannelID: msg.ChatID,
		Text:      msg.Content,
		ChatType:  domain.ChatTypeGroup,
	}
	if msg.ChatType == string(domain.ChatTypeP2P) {
		in.ChatType = domain.ChatTypeP2P
	}
	if msg.Sender != nil {
		in.SenderID = msg.Sender.SenderID
	}
	if msg.CreateTime > 0 {
		in.CreateTime = time.UnixMilli(msg.CreateTime)
	}
	if len(msg.Mentions) > 0 {
		in.Mentions = make(domain.Mentions, len(msg.Mentions))
		for _, m := range msg.Mentions {
			if m.Name != "" {
				in.Mentions[m.Name] = m.Markup()
			}
		}
	}
	return in
}
