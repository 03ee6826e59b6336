package data

import (
	"context"

	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/infra/discord"
)

// discordRepo implements the Discord message repository
type discordRepo struct {
	client      *discord.Client
	acceptLabel string
	rejectLabel string
}

// NewDiscordRepo creates a new Discord repository
func NewDiscordRepo(client *discord.Client, acceptLabel, rejectLabel string) repo.MessageRepo {
	return &discordRepo{client: client, acceptLabel: acceptLabel, rejectLabel: rejectLabel}
}

// SendText sends a text message
func (r *discordRepo) SendText(_ context.Context, channelID, text string) error {
	return r.client.SendText(channelID, text)
}

// SendConfirmation sends a message with accept and reject buttons
func (r *discordRepo) SendConfirmation(_ context.Context, channelID, title, correlationID string) error {
	return r.client.SendConfirmation(channelID, title, correlationID, r.acceptLabel, r.rejectLabel)
}
