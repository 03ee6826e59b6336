package server

import (
	"sync"

	"github.com/carokun/sachathescheduler/internal/service"
)

type notice struct {
	accountID string
	channelID string
	text      string
}

// mockConversations records what the servers queue
type mockConversations struct {
	mu        sync.Mutex
	messages  []*service.MessageRequest
	decisions []*service.DecisionRequest
	notices   []notice
	err       error
}

func (m *mockConversations) HandleMessage(req *service.MessageRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, req)
	return nil
}

func (m *mockConversations) HandleDecision(req *service.DecisionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.decisions = append(m.decisions, req)
	return nil
}

func (m *mockConversations) Notify(accountID, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, notice{accountID, channelID, text})
	return nil
}
