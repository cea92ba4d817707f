package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	sendMessageEndpoint   = "/api/chat/message"
	historyEndpoint       = "/api/chat/history/%s"
	resetSessionEndpoint  = "/api/chat/session/%s"
	createSessionEndpoint = "/api/chat/session"
)

// HTTPClient talks to the live backend. Reads use the default timeout;
// the send endpoint gets a longer one because the RAG pipeline is slower
// than simple lookups.
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	generateClient *http.Client
}

func NewHTTPClient(baseURL string, requestTimeout, generateTimeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		generateClient: &http.Client{
			Timeout: generateTimeout,
		},
	}
}

func (c *HTTPClient) doRequest(ctx context.Context, client *http.Client, method, endpoint string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *HTTPClient) SendMessage(ctx context.Context, sessionID, query string) (*SendMessageResponse, error) {
	req := SendMessageRequest{
		Query:     query,
		SessionID: sessionID,
	}

	var resp SendMessageResponse
	if err := c.doRequest(ctx, c.generateClient, http.MethodPost, sendMessageEndpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) History(ctx context.Context, sessionID string) (*HistoryResponse, error) {
	var resp HistoryResponse
	endpoint := fmt.Sprintf(historyEndpoint, sessionID)
	if err := c.doRequest(ctx, c.httpClient, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ResetSession(ctx context.Context, sessionID string) (*ResetSessionResponse, error) {
	var resp ResetSessionResponse
	endpoint := fmt.Sprintf(resetSessionEndpoint, sessionID)
	if err := c.doRequest(ctx, c.httpClient, http.MethodDelete, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CreateSession(ctx context.Context) (string, error) {
	var resp createSessionResponse
	if err := c.doRequest(ctx, c.httpClient, http.MethodPost, createSessionEndpoint, nil, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}
