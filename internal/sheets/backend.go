package sheets

//go:generate mockgen -destination=./backend_mock_test.go -package=sheets -source=backend.go Backend

import "context"

// Target is an opened spreadsheet narrowed to the worksheet rows go to.
type Target struct {
	SpreadsheetID string
	Title         string
	Worksheet     string
}

// Backend is the remote spreadsheet service.
type Backend interface {
	// SpreadsheetByID opens the spreadsheet with the given identifier.
	SpreadsheetByID(ctx context.Context, id string) (*Target, error)
	// SpreadsheetByName opens the first spreadsheet with the given title.
	SpreadsheetByName(ctx context.Context, name string) (*Target, error)
	// AppendRow inserts one row after the last row of the target worksheet.
	AppendRow(ctx context.Context, target *Target, row []any) error
}
