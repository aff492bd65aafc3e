// Package erp fetches the raw work-order export from the ERP's report
// endpoint. The response wraps the row array in a message envelope; some
// server versions return usable data even on error statuses, which we
// tolerate the same way the previous front end did.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"labor-stats/connectors/config"
	"labor-stats/domain/catalog"
)

// ErrNoToken signals that no API credential is configured; callers fall
// back to the local dataset.
var ErrNoToken = errors.New("erp: no API token configured")

// Client is a thin wrapper over http.Client with token auth.
// Use New to construct it.
type Client struct {
	base   string
	method string
	c      *http.Client
}

// New builds a client from config. The bearer credential is carried by an
// oauth2 static token source on the underlying transport; the ERP expects
// the "token" scheme rather than "Bearer".
func New(cfg *config.Config) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.API.Token,
		TokenType:   "token",
	})
	hc := oauth2.NewClient(context.Background(), src)
	hc.Timeout = cfg.Timeout()
	return &Client{base: cfg.API.URL, method: cfg.API.Method, c: hc}
}

// HasToken reports whether a credential is configured at all.
func (c *Client) HasToken() bool {
	tr, ok := c.c.Transport.(*oauth2.Transport)
	if !ok {
		return false
	}
	tok, err := tr.Source.Token()
	return err == nil && tok.AccessToken != ""
}

// FetchRows POSTs to the report method and returns the raw row array.
// Any failure is returned to the caller; data-quality issues inside rows
// are not this layer's concern.
func (c *Client) FetchRows(ctx context.Context) ([]catalog.RawRow, error) {
	if !c.HasToken() {
		return nil, ErrNoToken
	}

	url := fmt.Sprintf("%s/%s", c.base, c.method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString("{}"))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erp: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erp: reading response: %w", err)
	}

	rows, rowsErr := rowsFromBody(body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Some ERP versions report an error status but still attach the
		// row array; use it rather than failing the refresh.
		if rowsErr == nil {
			slog.Warn("erp.fetch.degraded", "status", resp.StatusCode, "rows", len(rows))
			return rows, nil
		}
		return nil, fmt.Errorf("erp: status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	if rowsErr != nil {
		return nil, fmt.Errorf("erp: unexpected response shape: %w", rowsErr)
	}
	return rows, nil
}

// rowsFromBody unwraps {"message": {"success": ..., "data": [...]}} down
// to the row array.
func rowsFromBody(body []byte) ([]catalog.RawRow, error) {
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.Message == nil {
		return nil, errors.New("response has no message field")
	}
	return catalog.ExtractRows(payload.Message)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
