// Package client calls the coverline HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"coverline/internal/poller"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to one coverline server. It implements poller.StatusSource.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

var _ poller.StatusSource = (*Client)(nil)

// New creates a Client. An empty secret sends no Authorization header.
func New(baseURL, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract asks the server to start extracting docID.
func (c *Client) Extract(ctx context.Context, docID uuid.UUID) error {
	body, err := json.Marshal(map[string]string{"documentId": docID.String()})
	if err != nil {
		return fmt.Errorf("client.Extract: %w", err)
	}
	if _, err := c.do(ctx, http.MethodPost, "/extract", body); err != nil {
		return fmt.Errorf("client.Extract: %w", err)
	}
	return nil
}

// GetStatus reads the processing status of docID.
func (c *Client) GetStatus(ctx context.Context, docID uuid.UUID) (*poller.StatusSnapshot, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/documents/"+docID.String()+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("client.GetStatus: %w", err)
	}
	var snap poller.StatusSnapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return nil, fmt.Errorf("client.GetStatus: decoding status: %w", err)
	}
	return &snap, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	if !env.Success {
		return nil, errors.New("server reported failure")
	}
	return &env, nil
}
