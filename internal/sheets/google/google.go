package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fintrack/internal/log"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client writes monthly reports to a spreadsheet, one tab per year
// ("2024 Reports", "2025 Reports", ...).
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *slog.Logger
}

// Ensure interface conformance
var _ ports.ReportStore = (*Client)(nil)

type Options struct {
	SpreadsheetID string
	// SheetName is the tab name without the year prefix.
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with a service account.
// Inline JSON credentials take precedence over the file.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Reports"
	}

	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     base,
		logger:        slog.With(log.FieldComponent, log.ComponentSheets),
	}, nil
}

func newSheetsService(ctx context.Context, inline, file string) (*gsheet.Service, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		log.FieldComponent, log.ComponentSheets,
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertReport writes r to the tab of r's year. An existing row for the same
// month and user is overwritten in place; otherwise the row goes after the
// last used one. An empty tab gets the header row first.
func (c *Client) UpsertReport(ctx context.Context, r ports.MonthlyReport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if r.UserID == "" || r.Month.IsZero() {
		return "", errors.New("report requires a user and a month")
	}

	sheet := yearPrefixedName(c.sheetBase, r.Month.Year)
	keys := fmt.Sprintf("%s!A:B", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, keys).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read keys of %s: %w", sheet, err)
	}

	if len(resp.Values) == 0 {
		header := &gsheet.ValueRange{Values: [][]any{reportHeader()}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1:%s1", sheet, lastColumn), header).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("failed to write header of %s: %w", sheet, err)
		}
		resp.Values = [][]any{reportHeader()}
	}

	row := findReportRow(resp.Values, r.Month.String(), r.UserID)
	replaced := row > 0
	if !replaced {
		row = len(resp.Values) + 1
	}

	ref := fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
	vr := &gsheet.ValueRange{Values: [][]any{reportValues(r)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("failed to update %s: %w", ref, err)
	}

	c.logger.DebugContext(ctx, "Report row written",
		log.FieldUserID, r.UserID,
		log.FieldMonth, r.Month.String(),
		log.FieldSheetsRef, ref,
		"replaced", replaced)
	return ref, nil
}

// ListReports returns every parseable report row of year's tab.
func (c *Client) ListReports(ctx context.Context, year int) ([]ports.MonthlyReport, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:%s", yearPrefixedName(c.sheetBase, year), lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out []ports.MonthlyReport
	for _, row := range resp.Values {
		r, ok := parseReportRow(row)
		if !ok {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
