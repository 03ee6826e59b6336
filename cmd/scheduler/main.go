package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/carokun/sachathescheduler/internal/api"
	"github.com/carokun/sachathescheduler/internal/biz"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/conf"
	"github.com/carokun/sachathescheduler/internal/data"
	"github.com/carokun/sachathescheduler/internal/infra/discord"
	"github.com/carokun/sachathescheduler/internal/infra/feishu"
	"github.com/carokun/sachathescheduler/internal/infra/google"
	"github.com/carokun/sachathescheduler/internal/metrics"
	"github.com/carokun/sachathescheduler/internal/server"
	"github.com/carokun/sachathescheduler/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	messages := cfg.Messages.ToBotMessages()

	// Initialize clients
	googleClient, err := google.NewClient(cfg.Google.ClientSecret, cfg.Google.RedirectURL())
	if err != nil {
		log.Fatalf("Failed to create Google client: %v", err)
	}

	var (
		feishuClient  *feishu.Client
		discordClient *discord.Client
		messageRepo   repo.MessageRepo
	)
	switch cfg.Platform {
	case conf.PlatformDiscord:
		discordClient, err = discord.NewClient(cfg.Discord.BotToken)
		if err != nil {
			log.Fatalf("Failed to create Discord client: %v", err)
		}
		messageRepo = data.NewDiscordRepo(discordClient, messages.AcceptLabel, messages.RejectLabel)
	default:
		feishuClient = feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
		messageRepo = data.NewFeishuRepo(feishuClient, messages.AcceptLabel, messages.RejectLabel)
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(data.Options{
		DBPath:      cfg.Store.DBPath,
		Google:      googleClient,
		Classifier:  data.NewClassifier(cfg),
		Message:     messageRepo,
		StateSecret: cfg.Google.StateSecret,
		StateMaxAge: cfg.Google.StateMaxAge,
	})
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	fmt.Printf("[Scheduler] Account DB: %s\n", cfg.Store.DBPath)

	// Initialize usecase layer
	uc := biz.NewUsecases(biz.Repos{
		Account:    repos.Account,
		Classifier: repos.Classifier,
		Calendar:   repos.Calendar,
		Auth:       repos.Auth,
		State:      repos.State,
	}, biz.Options{
		Messages:          messages,
		PublicBaseURL:     cfg.Google.PublicBaseURL,
		Timezone:          cfg.Timezone,
		ClassifierTimeout: cfg.Classifier.Timeout,
		CalendarTimeout:   cfg.Google.CalendarTimeout,
	})

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	// Initialize service layer
	convSvc := service.NewConversationService(uc.Conversation, uc.Confirmation, repos.Message, m)
	inbox := server.NewInbox(convSvc, time.Now())

	// Initialize servers
	var gateway service.Gateway
	var cardHandler http.Handler
	if feishuClient != nil {
		feishuSrv := server.NewFeishuServer(feishuClient, inbox, messages.ConfirmSubmitted)
		if cfg.Feishu.VerificationToken != "" {
			cardHandler = feishuSrv.CardHandler(cfg.Feishu.VerificationToken, cfg.Feishu.EncryptKey)
		}
		gateway = feishuSrv
	} else {
		gateway = server.NewDiscordServer(discordClient, inbox, messages.ConfirmSubmitted)
	}

	httpSrv := server.NewHTTPServer(cfg.HTTP.Addr, uc.Link, convSvc, server.HTTPOptions{
		LinkedText:  messages.LinkSucceeded,
		CardHandler: cardHandler,
		Metrics:     m.Handler(),
	})
	apiSrv := api.NewServer(repos.Account, cfg.HTTP.AdminAddr)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("[Scheduler] Starting %s gateway...\n", gateway.Name())
		return gateway.Start(gctx)
	})
	g.Go(httpSrv.Start)
	g.Go(apiSrv.Start)
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		gateway.Stop()
		if err := httpSrv.Stop(shutdownCtx); err != nil {
			fmt.Printf("[Scheduler] HTTP shutdown: %v\n", err)
		}
		if err := apiSrv.Stop(shutdownCtx); err != nil {
			fmt.Printf("[Scheduler] API shutdown: %v\n", err)
		}
		return nil
	})

	err = g.Wait()
	// Let queued conversations finish before the store closes
	convSvc.Close()
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
