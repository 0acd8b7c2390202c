package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	ports "lifedash/internal/sheets"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads and appends rows through the Sheets API directly. Because a
// plain spreadsheet has no server-side logic, it assigns serials itself.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	loc           *time.Location

	// serializes read-then-append so two inserts from this process
	// never pick the same serial
	mu sync.Mutex
}

var _ ports.Store = (*Client)(nil)

// Config holds what is needed to reach the spreadsheet.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
	Location           *time.Location
}

// New creates a Sheets client using service account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither credential
// field is set.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.Location), nil
}

// NewWithService wraps an existing service, mainly for tests pointing at a
// fake endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.Local
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, loc: loc}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// FetchRows reads every populated row of the sheet, header included.
func (c *Client) FetchRows(ctx context.Context, sheet string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rows, err := c.readAll(ctx, sheet)
	if err != nil {
		return nil, storeError(sheet, ports.ActionFetch, err)
	}
	return rows, nil
}

func (c *Client) readAll(ctx context.Context, sheet string) ([][]any, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, columnsRange(sheet)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return normalizeValues(resp.Values), nil
}

// InsertRow assigns serials from the current sheet content and appends the row.
func (c *Client) InsertRow(ctx context.Context, sheet string, req ports.InsertRequest) (ports.InsertResult, error) {
	if c.svc == nil {
		return ports.InsertResult{}, errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.readAll(ctx, sheet)
	if err != nil {
		return ports.InsertResult{}, storeError(sheet, req.Action, err)
	}
	row, res, err := ports.AssignServerFields(existing, req, c.loc)
	if err != nil {
		return ports.InsertResult{}, &ports.StoreError{Kind: ports.KindLogical, Sheet: sheet, Action: req.Action, Message: err.Error(), Err: ports.ErrStoreFailure}
	}

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, anchorRange(sheet), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return ports.InsertResult{}, storeError(sheet, req.Action, err)
	}

	slog.InfoContext(ctx, "Appended row to sheet",
		"sheet", sheet,
		"action", req.Action,
		"serial", res.SerialNumber())
	return res, nil
}

// storeError maps API failures onto the store error taxonomy.
func storeError(sheet, action string, err error) error {
	se := &ports.StoreError{Kind: ports.KindTransport, Sheet: sheet, Action: action, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		se.StatusCode = gerr.Code
		se.Message = gerr.Message
		if gerr.Code == http.StatusBadRequest || gerr.Code == http.StatusNotFound {
			// unknown sheet name or malformed range
			se.Kind = ports.KindLogical
		}
	}
	return se
}
