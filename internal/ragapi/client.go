package ragapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/opengrove/ragchat/internal/config"
	"github.com/opengrove/ragchat/internal/domain"
)

// Client talks to the RAG backend's REST surface.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	assistants *assistantCache
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		assistants: newAssistantCache(config.AssistantCacheDuration),
	}
}

// ListAssistants fetches the assistants available on the backend. Results
// are cached.
func (c *Client) ListAssistants(ctx context.Context) ([]AssistantRecord, error) {
	if cached := c.assistants.Get(); cached != nil {
		return cached, nil
	}

	var records []AssistantRecord
	if err := c.doJSON(ctx, http.MethodGet, "/assistants", nil, &records); err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}

	c.assistants.Set(records)
	return records, nil
}

// GetAssistant looks up a single assistant by id.
func (c *Client) GetAssistant(ctx context.Context, assistantID string) (*AssistantRecord, error) {
	records, err := c.ListAssistants(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.AssistantID == assistantID {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("assistant %q: %w", assistantID, domain.ErrAssistantNotFound)
}

func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionRecord, error) {
	var record SessionRecord
	if err := c.doJSON(ctx, http.MethodPost, "/sessions", req, &record); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &record, nil
}

func (c *Client) ListSessions(ctx context.Context, datasetID, assistantID string) ([]SessionRecord, error) {
	q := url.Values{}
	q.Set("dataset_id", datasetID)
	q.Set("assistant_id", assistantID)

	var records []SessionRecord
	if err := c.doJSON(ctx, http.MethodGet, "/sessions?"+q.Encode(), nil, &records); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}

func (c *Client) UpdateSession(ctx context.Context, sessionID string, req UpdateSessionRequest) (*SessionRecord, error) {
	var record SessionRecord
	path := "/sessions/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodPut, path, req, &record); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return &record, nil
}

func (c *Client) ListMessages(ctx context.Context, sessionID string, limit, offset int) ([]MessageRecord, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	path := "/sessions/" + url.PathEscape(sessionID) + "/messages?" + q.Encode()

	var records []MessageRecord
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return records, nil
}

// Chat issues a non-streaming chat request and waits for the full response.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Stream = false
	var resp ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	return &resp, nil
}

// ChatEnhanced is Chat against the enhanced-context endpoint.
func (c *Client) ChatEnhanced(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Stream = false
	var resp ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat/enhanced", req, &resp); err != nil {
		return nil, fmt.Errorf("chat enhanced: %w", err)
	}
	return &resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned status: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
