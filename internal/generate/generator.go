// Package generate plugs an external code generator into the CRUD
// surface. The core only consumes a finished text blob.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Generator produces handler source from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client calls an upstream generation service over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	OK   bool   `json:"ok"`
	Code string `json:"code"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	b, _ := json.Marshal(generateRequest{Prompt: prompt})

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate", bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("generate decode: %w", err)
	}
	if resp.StatusCode >= 400 || !out.OK {
		return "", fmt.Errorf("generate error (status %d)", resp.StatusCode)
	}
	return out.Code, nil
}
