package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/edgard/hubermanchat/internal/config"
	errs "github.com/edgard/hubermanchat/internal/errors"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

type googleBackend struct {
	sheets           *sheetsapi.Service
	drive            *drive.Service
	valueInputOption string
	log              *slog.Logger
}

// NewGoogleBackend creates a Backend for the Sheets and Drive APIs. Without
// extra options it authenticates as the configured service account.
func NewGoogleBackend(ctx context.Context, cfg config.SheetsConfig, log *slog.Logger, opts ...option.ClientOption) (Backend, error) {
	if log == nil {
		log = slog.Default()
	}

	if len(opts) == 0 {
		if cfg.Credential == nil {
			return nil, errs.NewConfigError("service account credential is required", nil)
		}
		jwtCfg, err := google.JWTConfigFromJSON(cfg.Credential.JSON(), cfg.Scopes...)
		if err != nil {
			return nil, errs.NewAuthError(ServiceName, "failed to authorize Google Sheets", err)
		}
		opts = []option.ClientOption{option.WithTokenSource(jwtCfg.TokenSource(ctx))}
	}

	sheetsSvc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, errs.NewLoggingError("failed to create sheets service", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errs.NewLoggingError("failed to create drive service", err)
	}

	valueInputOption := cfg.ValueInputOption
	if valueInputOption == "" {
		valueInputOption = config.DefaultValueInputOption
	}

	return &googleBackend{
		sheets:           sheetsSvc,
		drive:            driveSvc,
		valueInputOption: valueInputOption,
		log:              log.With("component", "sheets_backend"),
	}, nil
}

func (g *googleBackend) SpreadsheetByID(ctx context.Context, id string) (*Target, error) {
	ss, err := g.sheets.Spreadsheets.Get(id).
		Fields("spreadsheetId", "properties.title", "sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyError(fmt.Sprintf("failed to open spreadsheet %q", id), err)
	}
	return firstWorksheet(ss)
}

func (g *googleBackend) SpreadsheetByName(ctx context.Context, name string) (*Target, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), spreadsheetMimeType)

	list, err := g.drive.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyError(fmt.Sprintf("failed to look up spreadsheet %q", name), err)
	}
	if len(list.Files) == 0 {
		return nil, errs.NewLoggingError(fmt.Sprintf("spreadsheet %q not found, check the name and that it is shared with the service account", name), nil)
	}

	g.log.DebugContext(ctx, "Found spreadsheet by name", "name", name, "spreadsheet_id", list.Files[0].Id)
	return g.SpreadsheetByID(ctx, list.Files[0].Id)
}

func (g *googleBackend) AppendRow(ctx context.Context, target *Target, row []any) error {
	values := &sheetsapi.ValueRange{Values: [][]any{row}}

	_, err := g.sheets.Spreadsheets.Values.Append(target.SpreadsheetID, quoteSheetName(target.Worksheet), values).
		ValueInputOption(g.valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return classifyError("failed to append row", err)
	}
	return nil
}

// firstWorksheet picks the tab with the lowest index.
func firstWorksheet(ss *sheetsapi.Spreadsheet) (*Target, error) {
	var first *sheetsapi.SheetProperties
	for _, sh := range ss.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		if first == nil || sh.Properties.Index < first.Index {
			first = sh.Properties
		}
	}
	if first == nil {
		return nil, errs.NewLoggingError(fmt.Sprintf("spreadsheet %q has no worksheets", ss.SpreadsheetId), nil)
	}

	title := ss.SpreadsheetId
	if ss.Properties != nil && ss.Properties.Title != "" {
		title = ss.Properties.Title
	}

	return &Target{
		SpreadsheetID: ss.SpreadsheetId,
		Title:         title,
		Worksheet:     first.Title,
	}, nil
}

// classifyError turns rejected credentials into AuthError and any other
// failure into LoggingError.
func classifyError(message string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return errs.NewAuthError(ServiceName, "service account credential rejected", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return errs.NewAuthError(ServiceName, "service account credential rejected", err)
	}

	return errs.NewLoggingError(message, err)
}

// quoteSheetName builds an A1 range covering a whole worksheet.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
