// Package sheets appends conversation log rows to a Google spreadsheet.
// The spreadsheet is located by identifier first and by name second.
package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edgard/hubermanchat/internal/config"
	"github.com/edgard/hubermanchat/internal/domain/model"
	errs "github.com/edgard/hubermanchat/internal/errors"
)

// ServiceName identifies the spreadsheet service in AuthErrors.
const ServiceName = "sheets"

// Strategy is one way of locating the log spreadsheet.
type Strategy struct {
	Name string
	Open func(ctx context.Context) (*Target, error)
}

// Client writes log entries through a Backend.
type Client struct {
	backend    Backend
	strategies []Strategy
	log        *slog.Logger
}

// NewClient builds a client that resolves the spreadsheet by cfg.ID and then
// by cfg.Name, skipping whichever is unset.
func NewClient(backend Backend, cfg config.SheetsConfig, log *slog.Logger) (*Client, error) {
	if backend == nil {
		return nil, errs.NewConfigError("spreadsheet backend is required", nil)
	}
	if log == nil {
		log = slog.Default()
	}

	var strategies []Strategy
	if cfg.ID != "" {
		id := cfg.ID
		strategies = append(strategies, Strategy{
			Name: "by id",
			Open: func(ctx context.Context) (*Target, error) { return backend.SpreadsheetByID(ctx, id) },
		})
	}
	if cfg.Name != "" {
		name := cfg.Name
		strategies = append(strategies, Strategy{
			Name: "by name",
			Open: func(ctx context.Context) (*Target, error) { return backend.SpreadsheetByName(ctx, name) },
		})
	}
	if len(strategies) == 0 {
		return nil, errs.NewConfigError("missing secrets: SHEET_ID, SHEET_NAME", nil)
	}

	return &Client{
		backend:    backend,
		strategies: strategies,
		log:        log.With("component", "sheets_client"),
	}, nil
}

// Resolve tries each strategy in order. The first success wins; if all fail
// the last failure is returned.
func (c *Client) Resolve(ctx context.Context) (*Target, error) {
	var lastErr error
	for _, s := range c.strategies {
		target, err := s.Open(ctx)
		if err == nil {
			c.log.DebugContext(ctx, "Resolved spreadsheet", "strategy", s.Name, "spreadsheet_id", target.SpreadsheetID, "worksheet", target.Worksheet)
			return target, nil
		}
		c.log.WarnContext(ctx, "Failed to open spreadsheet", "strategy", s.Name, "error", err)
		lastErr = err
	}
	return nil, asLoggingError("failed to open spreadsheet", lastErr)
}

// AppendRow resolves the spreadsheet and appends entry as one row.
// It is attempted once; a failure drops the entry.
func (c *Client) AppendRow(ctx context.Context, entry model.LogEntry) error {
	target, err := c.Resolve(ctx)
	if err != nil {
		return err
	}

	if err := c.backend.AppendRow(ctx, target, entry.Row()); err != nil {
		c.log.ErrorContext(ctx, "Failed to append log row", "spreadsheet_id", target.SpreadsheetID, "error", err)
		return asLoggingError(fmt.Sprintf("failed to append row to %q", target.Title), err)
	}

	c.log.DebugContext(ctx, "Appended log row", "spreadsheet_id", target.SpreadsheetID, "worksheet", target.Worksheet)
	return nil
}

// asLoggingError keeps AuthErrors and LoggingErrors as they are and wraps
// anything else into a LoggingError.
func asLoggingError(message string, err error) error {
	if errs.IsAuth(err) || errs.IsLogging(err) {
		return err
	}
	return errs.NewLoggingError(message, err)
}
