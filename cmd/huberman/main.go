// Package main contains the entrypoint for the Dr. Huberman AI chat.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/hubermanchat/internal/app"
	"github.com/edgard/hubermanchat/internal/chat"
	"github.com/edgard/hubermanchat/internal/config"
	"github.com/edgard/hubermanchat/internal/gemini"
	"github.com/edgard/hubermanchat/internal/logger"
	"github.com/edgard/hubermanchat/internal/sheets"
	"github.com/edgard/hubermanchat/internal/telegram"
	"github.com/edgard/hubermanchat/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires the components, serves until ctx is cancelled and returns the
// process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("ERROR: Missing secrets or invalid configuration. Set GEMINI_API_KEY, SERVICE_ACCOUNT_JSON and SHEET_ID or SHEET_NAME.",
			"path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	if cfg.Debug.CredentialDiagnostics {
		log.Debug("Service account loaded",
			"client_email", cfg.Sheets.Credential.ClientEmail,
			"project_id", cfg.Sheets.Credential.ProjectID)
	}

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	// Chat keeps working without the spreadsheet; every turn warns instead.
	var recorder chat.Recorder
	backend, err := sheets.NewGoogleBackend(ctx, cfg.Sheets, log)
	if err == nil {
		var sheetsClient *sheets.Client
		sheetsClient, err = sheets.NewClient(backend, cfg.Sheets, log)
		if err == nil {
			recorder = sheetsClient
		}
	}
	if err != nil {
		log.Error("Failed to initialize Google Sheets client, logging disabled", "error", err)
	}

	loop := chat.NewLoop(gemClient, recorder, cfg.Gemini.SystemPrompt, log)
	registry := chat.NewRegistry(cfg.Session.IdleTimeout, log)

	server, err := web.NewServer(cfg.Server, cfg.UI, loop, registry, log)
	if err != nil {
		log.Error("Failed to create web server", "error", err)
		return 1
	}
	surfaces := []app.Surface{{Name: "web", Run: server.Run}}

	if cfg.Telegram.Enabled() {
		deps := telegram.Deps{Logger: log, Loop: loop, Registry: registry, Welcome: cfg.Telegram.Welcome}
		tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
			tgbot.WithMiddlewares(logger.TelegramMiddleware(log)),
			tgbot.WithDefaultHandler(telegram.NewChatHandler(deps)),
		)
		if err != nil {
			log.Error("Failed to create Telegram bot", "error", err)
			return 1
		}
		if err := telegram.RegisterHandlers(tg, log, telegram.RegisterAllCommands(deps)); err != nil {
			log.Error("Failed to register Telegram handlers", "error", err)
			return 1
		}
		surfaces = append(surfaces, app.TelegramSurface(tg))
	}

	sched, err := app.NewScheduler(log, app.SweepTask(registry, cfg.Session.SweepInterval, log))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	runErr := app.New(log, sched, surfaces...).Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Stopped gracefully.")
	return 0
}
