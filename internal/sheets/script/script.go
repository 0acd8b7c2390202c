// Package script implements the store ports against a spreadsheet web app
// endpoint that answers fetch and insert actions with JSON.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	ports "lifedash/internal/sheets"
)

const (
	DefaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20
)

// Options configures the endpoint client.
type Options struct {
	Endpoint     string
	HTTPClient   *http.Client
	Timeout      time.Duration
	RetryMax     int // fetch retries; inserts are never retried
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *slog.Logger
}

type Client struct {
	endpoint    *url.URL
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	logger      *slog.Logger
}

var _ ports.Store = (*Client)(nil)

type fetchResponse struct {
	Success bool    `json:"success"`
	Data    [][]any `json:"data"`
	Error   string  `json:"error"`
}

// New validates the endpoint and builds the HTTP clients.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, errors.New("missing endpoint URL")
	}
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "parse endpoint URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{
		endpoint:   u,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}

	if opts.RetryMax > 0 {
		rc := retryablehttp.NewClient()
		rc.HTTPClient = opts.HTTPClient
		rc.RetryMax = opts.RetryMax
		if opts.RetryWaitMin > 0 {
			rc.RetryWaitMin = opts.RetryWaitMin
		}
		if opts.RetryWaitMax > 0 {
			rc.RetryWaitMax = opts.RetryWaitMax
		}
		rc.Logger = opts.Logger
		// hand the final response back so status handling stays in one place
		rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
		c.retryClient = rc
	}

	return c, nil
}

// FetchRows performs GET ?sheet=<name>&action=fetch and returns the raw rows.
func (c *Client) FetchRows(ctx context.Context, sheet string) ([][]any, error) {
	u := *c.endpoint
	q := u.Query()
	q.Set("sheet", sheet)
	q.Set("action", ports.ActionFetch)
	u.RawQuery = q.Encode()

	start := time.Now()
	resp, err := c.doFetch(ctx, u.String())
	if err != nil {
		return nil, c.fail(ctx, &ports.StoreError{Kind: ports.KindTransport, Sheet: sheet, Action: ports.ActionFetch, Err: errors.Wrap(err, "fetch request")})
	}
	defer resp.Body.Close()

	var out fetchResponse
	if err := c.decode(resp, &out); err != nil {
		err.Sheet, err.Action = sheet, ports.ActionFetch
		return nil, c.fail(ctx, err)
	}
	if !out.Success {
		return nil, c.fail(ctx, &ports.StoreError{Kind: ports.KindLogical, Sheet: sheet, Action: ports.ActionFetch, Message: out.Error, Err: ports.ErrStoreFailure})
	}

	c.logger.DebugContext(ctx, "Fetched sheet rows",
		"sheet", sheet,
		"rows", len(out.Data),
		"duration_ms", time.Since(start).Milliseconds())
	return out.Data, nil
}

func (c *Client) doFetch(ctx context.Context, target string) (*http.Response, error) {
	if c.retryClient != nil {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		return c.retryClient.Do(req)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// InsertRow posts a form-encoded write. It is sent exactly once.
func (c *Client) InsertRow(ctx context.Context, sheet string, ins ports.InsertRequest) (ports.InsertResult, error) {
	rowData, err := json.Marshal(ins.RowData)
	if err != nil {
		return ports.InsertResult{}, &ports.StoreError{Kind: ports.KindDecode, Sheet: sheet, Action: ins.Action, Err: errors.Wrap(err, "encode rowData")}
	}

	form := url.Values{}
	form.Set("sheetName", sheet)
	form.Set("action", ins.Action)
	if ins.Discriminator.Key != "" {
		form.Set(ins.Discriminator.Key, ins.Discriminator.Value)
	}
	form.Set("rowData", string(rowData))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return ports.InsertResult{}, &ports.StoreError{Kind: ports.KindTransport, Sheet: sheet, Action: ins.Action, Err: errors.Wrap(err, "build insert request")}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.InsertResult{}, c.fail(ctx, &ports.StoreError{Kind: ports.KindTransport, Sheet: sheet, Action: ins.Action, Err: errors.Wrap(err, "insert request")})
	}
	defer resp.Body.Close()

	var out ports.InsertResult
	if serr := c.decode(resp, &out); serr != nil {
		serr.Sheet, serr.Action = sheet, ins.Action
		return ports.InsertResult{}, c.fail(ctx, serr)
	}
	if !out.Success {
		return ports.InsertResult{}, c.fail(ctx, &ports.StoreError{Kind: ports.KindLogical, Sheet: sheet, Action: ins.Action, Message: out.Error, Err: ports.ErrStoreFailure})
	}

	c.logger.InfoContext(ctx, "Inserted row",
		"sheet", sheet,
		"action", ins.Action,
		"serial", out.SerialNumber(),
		"dream_id", out.DreamID)
	return out, nil
}

// decode reads a JSON body, mapping HTTP and syntax failures to store errors.
func (c *Client) decode(resp *http.Response, v any) *ports.StoreError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &ports.StoreError{Kind: ports.KindTransport, StatusCode: resp.StatusCode, Err: errors.Wrap(err, "read response body")}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ports.StoreError{Kind: ports.KindTransport, StatusCode: resp.StatusCode, Message: snippet(body)}
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &ports.StoreError{Kind: ports.KindDecode, StatusCode: resp.StatusCode, Message: snippet(body), Err: errors.Wrap(err, "decode response")}
	}
	return nil
}

// fail logs and reports err, then returns it unchanged.
func (c *Client) fail(ctx context.Context, err *ports.StoreError) error {
	c.logger.ErrorContext(ctx, "Store request failed",
		"sheet", err.Sheet,
		"action", err.Action,
		"kind", string(err.Kind),
		"status", err.StatusCode,
		"error", err)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("store.sheet", err.Sheet)
			scope.SetTag("store.action", err.Action)
			scope.SetTag("store.kind", string(err.Kind))
			hub.CaptureException(err)
		})
	}
	return err
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// String is used in startup logs; it never includes the query string.
func (c *Client) String() string {
	return fmt.Sprintf("%s://%s%s", c.endpoint.Scheme, c.endpoint.Host, c.endpoint.Path)
}
