// Package gas reads the household ledger from a spreadsheet published as a
// web-app script endpoint that answers GET with a JSON array of rows.
package gas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"warikan/internal/core"
	ports "warikan/internal/sheets"
)

var (
	// ErrBadResponse is returned for transport failures and non-2xx answers.
	ErrBadResponse = errors.New("bad response from ledger endpoint")
	// ErrMalformedPayload is returned when the body is not a JSON array of rows.
	ErrMalformedPayload = errors.New("malformed ledger payload")
)

// maxBodyBytes caps the ledger download.
const maxBodyBytes = 32 << 20

// URLResolver returns the endpoint to call. It is consulted on every fetch
// so a URL saved at runtime takes effect immediately.
type URLResolver func(ctx context.Context) (string, error)

// StaticURL resolves to a fixed endpoint.
func StaticURL(u string) URLResolver {
	return func(context.Context) (string, error) {
		if strings.TrimSpace(u) == "" {
			return "", ports.ErrNoSource
		}
		return u, nil
	}
}

type Client struct {
	http    *http.Client
	resolve URLResolver
}

var _ ports.TransactionSource = (*Client)(nil)

// New creates a client. A nil httpClient gets a pooled client with the
// given timeout.
func New(resolve URLResolver, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = newHTTPClient(timeout)
	}
	return &Client{http: httpClient, resolve: resolve}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	// Apps Script redirects once to a googleusercontent host; the default
	// redirect policy follows it.
	return &http.Client{Transport: transport, Timeout: timeout}
}

// FetchTransactions downloads the full ledger.
func (c *Client) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.resolve == nil {
		return nil, ports.ErrNoSource
	}
	endpoint, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(endpoint) == "" {
		return nil, ports.ErrNoSource
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrBadResponse, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrBadResponse, err)
	}
	txs, err := decodeRows(ctx, body)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Fetched ledger",
		"rows", len(txs),
		"duration_ms", time.Since(start).Milliseconds())
	return txs, nil
}

// decodeRows accepts only a top-level JSON array. Rows that are not
// objects are skipped.
func decodeRows(ctx context.Context, body []byte) ([]core.Transaction, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw == nil {
		// "null" decodes into a nil slice without error
		return nil, fmt.Errorf("%w: not an array", ErrMalformedPayload)
	}
	txs := make([]core.Transaction, 0, len(raw))
	for i, r := range raw {
		var tx core.Transaction
		if err := json.Unmarshal(r, &tx); err != nil {
			slog.WarnContext(ctx, "Skipping ledger row",
				"row", i,
				"error", err)
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
