// Command send-message sends a one-off direct message through the configured chat platform.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/conf"
	"github.com/carokun/sachathescheduler/internal/data"
	"github.com/carokun/sachathescheduler/internal/infra/discord"
	"github.com/carokun/sachathescheduler/internal/infra/feishu"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 3 {
		fmt.Println("Usage: send-message <channel_id> <message>")
		os.Exit(1)
	}
	channelID := os.Args[1]
	message := strings.Join(os.Args[2:], " ")

	cfg := conf.LoadFromEnv()
	messages := cfg.Messages.ToBotMessages()

	var sender repo.MessageRepo
	switch cfg.Platform {
	case conf.PlatformDiscord:
		if cfg.Discord.BotToken == "" {
			fmt.Println("Error: DISCORD_BOT_TOKEN must be set")
			os.Exit(1)
		}
		client, err := discord.NewClient(cfg.Discord.BotToken)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		sender = data.NewDiscordRepo(client, messages.AcceptLabel, messages.RejectLabel)
	default:
		if cfg.Feishu.AppID == "" || cfg.Feishu.AppSecret == "" {
			fmt.Println("Error: FEISHU_APP_ID and FEISHU_APP_SECRET must be set")
			os.Exit(1)
		}
		client := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
		sender = data.NewFeishuRepo(client, messages.AcceptLabel, messages.RejectLabel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := sender.SendText(ctx, channelID, message); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Message sent successfully!")
}
