// Command debug-classify runs utterances through the configured intent classifier.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/conf"
	"github.com/carokun/sachathescheduler/internal/data"
)

func main() {
	_ = godotenv.Load()

	session := flag.String("session", "debug-classify", "Classifier session id")
	flag.Parse()

	cfg := conf.LoadFromEnv()
	classifier := data.NewClassifier(cfg)

	// One utterance from the arguments, otherwise read lines until EOF
	if flag.NArg() > 0 {
		if err := classify(cfg, classifier, *session, strings.Join(flag.Args(), " ")); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if err := classify(cfg, classifier, *session, line); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
		fmt.Print("> ")
	}
	fmt.Println()
}

func classify(cfg *conf.Config, classifier repo.ClassifierRepo, session, utterance string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Classifier.Timeout)
	defer cancel()

	intent, err := classifier.Classify(ctx, domain.ClassifyRequest{
		SessionID: session,
		Utterance: utterance,
		Timezone:  cfg.Timezone,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(intent, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
