// Package web serves the chat page: one scrollable message list and one text
// input, backed by the interaction loop.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edgard/hubermanchat/internal/chat"
	"github.com/edgard/hubermanchat/internal/config"
	"github.com/edgard/hubermanchat/internal/logger"
	"github.com/edgard/hubermanchat/internal/sanitize"
)

const shutdownTimeout = 5 * time.Second

//go:embed templates/page.html
var templateFS embed.FS

// Server is the HTTP surface.
type Server struct {
	router    *chi.Mux
	loop      *chat.Loop
	registry  *chat.Registry
	ui        config.UIConfig
	cfg       config.ServerConfig
	page      *template.Template
	sanitizer *sanitize.Policy
	log       *slog.Logger
}

// NewServer builds the router and parses the page template.
func NewServer(cfg config.ServerConfig, ui config.UIConfig, loop *chat.Loop, registry *chat.Registry, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	page, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		loop:      loop,
		registry:  registry,
		ui:        ui,
		cfg:       cfg,
		page:      page,
		sanitizer: sanitize.NewPolicy(),
		log:       log.With("component", "web_server"),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.HTTPMiddleware(s.log))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.RegisterRoutes(s.router)

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Web server starting", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutdown signal received, stopping web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown failed: %w", err)
	}
	s.log.Info("Web server stopped.")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
