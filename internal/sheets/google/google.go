package google

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kamai/internal/core"
	applog "kamai/internal/log"
	"kamai/internal/sheets"
)

var _ sheets.DirectoryMirror = (*Client)(nil)

// Client mirrors the directory into one tab of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string, logger *applog.Logger) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}
}

// NewFromEnv builds a client from the environment. A service account
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS) wins over an OAuth client plus token.
func NewFromEnv(ctx context.Context, spreadsheetID, sheetName string, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentialsOption(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, creds, goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID, sheetName, logger), nil
}

// Mirror clears the tab and writes the header followed by rows.
func (c *Client) Mirror(ctx context.Context, rows []core.FeaturedCreator) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tab := quoteSheetName(c.sheetName)
	clearRange := tab + "!A:E"

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	vr := &gsheet.ValueRange{Values: rowsFor(rows)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, tab+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}

	c.logger.InfoContext(ctx, "Directory mirrored", applog.FieldRows, len(rows))
	return nil
}

// rowsFor renders the header and one row per creator. IDs are written as
// strings so the sheet never shows them in scientific notation.
func rowsFor(creators []core.FeaturedCreator) [][]any {
	out := make([][]any, 0, len(creators)+1)
	header := make([]any, len(sheets.Header))
	for i, h := range sheets.Header {
		header[i] = h
	}
	out = append(out, header)
	for _, c := range creators {
		out = append(out, []any{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.FollowerLabel,
			c.ProfileLink,
			c.CreatedAt.UTC().Format(time.DateTime),
		})
	}
	return out
}

// quoteSheetName quotes a tab name for A1 notation.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
