package server

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/service"
)

const seenCacheSize = 4096

// Conversations is the part of the conversation service the servers use
type Conversations interface {
	HandleMessage(req *service.MessageRequest) error
	HandleDecision(req *service.DecisionRequest) error
	Notify(accountID, channelID, text string) error
}

// Inbox filters platform messages before they reach the conversation service
type Inbox struct {
	convSvc   Conversations
	seen      *lru.Cache[string, time.Time]
	startedAt time.Time
}

// NewInbox creates an inbox. Messages created before startedAt are dropped,
// platforms redeliver them after a reconnect.
func NewInbox(convSvc Conversations, startedAt time.Time) *Inbox {
	seen, err := lru.New[string, time.Time](seenCacheSize)
	if err != nil {
		panic(fmt.Sprintf("create seen cache: %v", err))
	}
	return &Inbox{convSvc: convSvc, seen: seen, startedAt: startedAt}
}

// Accept dispatches a message and reports whether it was queued
func (b *Inbox) Accept(msg *domain.InboundMessage) bool {
	if msg.SenderID == "" || msg.ChannelID == "" {
		return false
	}

	// Only direct messages start conversations
	if !msg.IsDirect() {
		fmt.Printf("[Server] Ignoring %s message %s\n", msg.ChatType, msg.ID)
		return false
	}

	if !msg.CreateTime.IsZero() && !msg.IsAfter(b.startedAt) {
		fmt.Printf("[Server] Ignoring message %s from before startup\n", msg.ID)
		return false
	}

	if msg.ID != "" {
		if seen, _ := b.seen.ContainsOrAdd(msg.ID, time.Now()); seen {
			fmt.Printf("[Server] Duplicate message ignored: %s\n", msg.ID)
			return false
		}
	}

	fmt.Printf("[Server] Queued message %s from %s: %s\n", msg.ID, msg.SenderID, truncate(msg.Text, 50))
	err := b.convSvc.HandleMessage(&service.MessageRequest{
		AccountID: msg.SenderID,
		ChannelID: msg.ChannelID,
		MsgID:     msg.ID,
		Text:      msg.Text,
		Mentions:  msg.Mentions,
	})
	if err != nil {
		fmt.Printf("[Server] Failed to queue message %s: %v\n", msg.ID, err)
		return false
	}
	return true
}

// Decide dispatches a confirmation decision. correlationID names the account
// whose pending action the card resolves; presses by anyone else are refused.
func (b *Inbox) Decide(operatorID, correlationID, channelID, value string) error {
	decision, ok := domain.ParseDecision(value)
	if !ok {
		return fmt.Errorf("unknown decision %q", value)
	}
	accountID := correlationID
	if accountID == "" {
		accountID = operatorID
	}
	if operatorID != "" && operatorID != accountID {
		return fmt.Errorf("card for %s pressed by %s", accountID, operatorID)
	}
	return b.convSvc.HandleDecision(&service.DecisionRequest{
		AccountID: accountID,
		ChannelID: channelID,
		Decision:  decision,
	})
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
