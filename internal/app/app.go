// Package app runs the interactive surfaces and the session sweeper until the
// process is signalled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"
)

// Surface is a long-running component serving users. Run blocks until ctx is
// cancelled.
type Surface struct {
	Name string
	Run  func(ctx context.Context) error
}

// TelegramSurface runs the bot's long-polling loop.
func TelegramSurface(b *tgbot.Bot) Surface {
	return Surface{
		Name: "telegram",
		Run: func(ctx context.Context) error {
			b.Start(ctx)
			if ctx.Err() == nil {
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		},
	}
}

// App manages the lifecycle of the surfaces and the scheduler.
type App struct {
	logger    *slog.Logger
	scheduler *Scheduler
	surfaces  []Surface
}

// New creates the orchestrator. scheduler may be nil.
func New(logger *slog.Logger, scheduler *Scheduler, surfaces ...Surface) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		logger:    logger.With("component", "orchestrator"),
		scheduler: scheduler,
		surfaces:  surfaces,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of them
// fails. It returns nil on graceful shutdown.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting orchestrator...", "surfaces", len(a.surfaces))

	g, gCtx := errgroup.WithContext(ctx)

	for _, s := range a.surfaces {
		g.Go(func() error {
			a.logger.Info("Starting surface", "surface", s.Name)
			if err := s.Run(gCtx); err != nil {
				a.logger.Error("Surface stopped with error", "surface", s.Name, "error", err)
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			a.logger.Info("Surface stopped", "surface", s.Name)
			return nil
		})
	}

	if a.scheduler != nil {
		g.Go(func() error {
			if err := a.scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			a.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := a.scheduler.Stop(); err != nil {
				a.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Orchestrator stopped gracefully.")
	return nil
}
