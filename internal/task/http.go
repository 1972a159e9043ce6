package task

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// HTTPProvider fetches tasks from the backend task API. The base URL and
// client come from the active environment; transport concerns beyond a
// timeout live in the injected client.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider against baseURL. A nil client falls
// back to http.DefaultClient.
func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// listResponse is the wire shape of the task listing endpoint.
type listResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// Count returns the backend's total task count.
func (p *HTTPProvider) Count(ctx context.Context) (int, error) {
	resp, err := p.fetch(ctx, 0, 1)
	if err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// ListPage returns up to limit tasks starting at offset.
func (p *HTTPProvider) ListPage(ctx context.Context, offset, limit int) ([]Task, error) {
	resp, err := p.fetch(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, offset, limit int) (listResponse, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	endpoint := p.baseURL + "/v1/tasks?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return listResponse{}, fmt.Errorf("failed to build task request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpResp, err := p.client.Do(req)
	if err != nil {
		return listResponse{}, fmt.Errorf("task request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return listResponse{}, fmt.Errorf("task request returned %s", httpResp.Status)
	}

	var out listResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return listResponse{}, fmt.Errorf("failed to decode task response: %w", err)
	}
	return out, nil
}
