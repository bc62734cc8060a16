package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/krawl-app/krawl-offline/internal/common"
	"github.com/krawl-app/krawl-offline/internal/models"
)

// HTTPClient implements Client over the JSON REST endpoints.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "https://krawl.app/api"). Timeouts are the caller's responsibility
// via context; the transport itself does not impose one.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

func (c *HTTPClient) GetTrail(ctx context.Context, id string) (*models.TrailDetail, error) {
	var trail models.TrailDetail
	if err := c.getJSON(ctx, "/trails/"+id, &trail); err != nil {
		return nil, err
	}
	return &trail, nil
}

func (c *HTTPClient) GetGem(ctx context.Context, id string) (*models.GemDetail, error) {
	var gem models.GemDetail
	if err := c.getJSON(ctx, "/gems/"+id, &gem); err != nil {
		return nil, err
	}
	return &gem, nil
}

func (c *HTTPClient) CreateGem(ctx context.Context, data json.RawMessage) error {
	return c.send(ctx, http.MethodPost, "/gems", data)
}

func (c *HTTPClient) CreateTrail(ctx context.Context, data json.RawMessage) error {
	return c.send(ctx, http.MethodPost, "/trails", data)
}

func (c *HTTPClient) UpdateGem(ctx context.Context, id string, data json.RawMessage) error {
	return c.send(ctx, http.MethodPut, "/gems/"+id, data)
}

func (c *HTTPClient) UpdateTrail(ctx context.Context, id string, data json.RawMessage) error {
	return c.send(ctx, http.MethodPut, "/trails/"+id, data)
}

func (c *HTTPClient) DeleteGem(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/gems/"+id, nil)
}

func (c *HTTPClient) DeleteTrail(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/trails/"+id, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrServerUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s", common.ErrServerUnavailable, resp.Status)
	}
	return nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, common.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body json.RawMessage) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}
	return nil
}
