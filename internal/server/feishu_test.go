package server

import (
	"testing"
	"time"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/infra/feishu"
)

func TestToInboundMessage(t *testing.T) {
	created := time.Now().Add(time.Second).UnixMilli()
	msg := &feishu.Message{
		ChatID:     "oc_1",
		MsgID:      "om_1",
		MsgType:    "text",
		ChatType:   "p2p",
		Content:    "meet Bob, tomorrow",
		Sender:     &feishu.Sender{SenderID: "ou_u1"},
		Mentions:   []feishu.Mention{{Key: "@_user_1", Name: "Bob", OpenID: "ou_bob"}},
		CreateTime: created,
	}

	in := toInboundMessage(msg)
	if !in.IsDirect() {
		t.Error("Expected p2p chat to be direct")
	}
	if in.SenderID != "ou_u1" || in.ChannelID != "oc_1" || in.ID != "om_1" {
		t.Errorf("Unexpected ids: %+v", in)
	}
	if in.Mentions["Bob"] != "<at id=ou_bob></at>" {
		t.Errorf("Expected Bob's mention markup, got %v", in.Mentions)
	}
	if in.CreateTime.UnixMilli() != created {
		t.Errorf("Expected create time %d, got %d", created, in.CreateTime.UnixMilli())
	}

	msg.ChatType = "group"
	if toInboundMessage(msg).ChatType != domain.ChatTypeGroup {
		t.Error("Expected group chat type")
	}
}

func TestFeishuServer_CardAction(t *testing.T) {
	convs := &mockConversations{}
	s := NewFeishuServer(feishu.NewClient("cli_test", "secret"), NewInbox(convs, time.Now()), "Got it")

	toast := s.handleCardAction(&feishu.CardAction{
		OperatorID: "ou_u1",
		ChatID:     "oc_1",
		Value:      map[string]any{feishu.ValueDecision: "accept", feishu.ValueAccount: "ou_u1"},
	})
	if toast != "Got it" {
		t.Errorf("Expected ack toast, got %q", toast)
	}
	if len(convs.decisions) != 1 || convs.decisions[0].AccountID != "ou_u1" || convs.decisions[0].ChannelID != "oc_1" {
		t.Errorf("Unexpected decisions: %+v", convs.decisions)
	}

	toast = s.handleCardAction(&feishu.CardAction{
		OperatorID: "ou_u2",
		Value:      map[string]any{feishu.ValueDecision: "accept", feishu.ValueAccount: "ou_u1"},
	})
	if toast == "Got it" {
		t.Error("Expected press by another user to be refused")
	}
	if len(convs.decisions) != 1 {
		t.Errorf("Expected no new decision, got %d", len(convs.decisions))
	}
}
