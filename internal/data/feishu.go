package data

import (
	"context"

	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/infra/feishu"
)

// feishuRepo implements the Feishu message repository
type feishuRepo struct {
	client      *feishu.Client
	acceptLabel string
	rejectLabel string
}

// NewFeishuRepo creates a new Feishu repository
func NewFeishuRepo(client *feishu.Client, acceptLabel, rejectLabel string) repo.MessageRepo {
	return &feishuRepo{client: client, acceptLabel: acceptLabel, rejectLabel: rejectLabel}
}

// SendText sends a text message
func (r *feishuRepo) SendText(ctx context.Context, channelID, text string) error {
	return r.client.SendText(ctx, channelID, text)
}

// SendConfirmation sends an interactive card with accept and reject buttons
func (r *feishuRepo) SendConfirmation(ctx context.Context, channelID, title, correlationID string) error {
	card := feishu.ConfirmationCard(title, correlationID, r.acceptLabel, r.rejectLabel)
	return r.client.SendCard(ctx, channelID, card)
}
