// Command setwebhook performs the one-time webhook registration: it points
// the bot at WEBHOOK_URL via the Bot API setWebhook method, attaching the
// shared secret token when one is configured.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/xujw3/tgbot/internal/config"
	"github.com/xujw3/tgbot/internal/integrations/paramstore"
	"github.com/xujw3/tgbot/internal/integrations/telegram"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	webhookURL := strings.TrimSpace(os.Getenv("WEBHOOK_URL"))
	if webhookURL == "" {
		slog.Error("required environment variable is not set", "key", "WEBHOOK_URL")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	var tgOpts []telegram.Option
	if cfg.TelegramToken != "" {
		tgOpts = append(tgOpts, telegram.WithStaticToken(cfg.TelegramToken))
	}
	var getter telegram.Getter
	if cfg.ParamPrefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		getter, err = paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
	}
	tg, err := telegram.NewClient(getter, tgOpts...)
	if err != nil {
		slog.Error("failed to create Telegram client", "err", err)
		os.Exit(1)
	}

	if err := tg.SetWebhook(ctx, webhookURL, cfg.WebhookSecretToken); err != nil {
		slog.Error("failed to register webhook", "err", err)
		os.Exit(1)
	}
	slog.Info("webhook registered", "url", webhookURL, "secretToken", cfg.WebhookSecretToken != "")
}
