package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/xujw3/tgbot/handler"
	"github.com/xujw3/tgbot/internal/config"
	"github.com/xujw3/tgbot/internal/integrations/paramstore"
	"github.com/xujw3/tgbot/internal/integrations/telegram"
	"github.com/xujw3/tgbot/internal/usecase"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	// ---- Telegram client ----
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

	// ---- Handler ----
	echoService, err := usecase.NewEchoService(tg)
	if err != nil {
		slog.Error("failed to create echo service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(echoService, handler.WithSecretToken(cfg.WebhookSecretToken))
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	slog.Info("starting webhook handler",
		"secretCheck", cfg.WebhookSecretToken != "",
		"allowedUsers", len(cfg.AllowedUserIDs),
		"offlineDirs", len(cfg.AlistOfflineDirs))

	lambda.Start(h.Handle)
}
