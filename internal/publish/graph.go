package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultGraphURL is the Facebook Graph API base both concrete adapters
// talk to. Overridable for tests.
const DefaultGraphURL = "https://graph.facebook.com/v18.0"

type graphResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
	Error  *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type graphClient struct {
	baseURL string
	client  *http.Client
}

func newGraphClient(baseURL string, client *http.Client) graphClient {
	if baseURL == "" {
		baseURL = DefaultGraphURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return graphClient{baseURL: baseURL, client: client}
}

func (g graphClient) post(ctx context.Context, path string, vals url.Values) (graphResponse, error) {
	var out graphResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(vals.Encode()))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("graph api: bad response (%s)", resp.Status)
	}
	if out.Error != nil {
		return out, fmt.Errorf("graph api: %s", out.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("graph api: %s", resp.Status)
	}
	return out, nil
}
