// Package llm provides language-model integration via a local Ollama server.
//
// The model has two jobs: phrasing the companion's messages, and (optionally)
// second-guessing the rule-based classifier. Both degrade gracefully: when
// Ollama is unreachable the companion falls back to canned responses and the
// rule-based classification, never to silence or failure.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is an Ollama API client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Model is the generation model; adjusted by EnsureModel when the
	// configured one is not installed.
	Model string
}

// NewClient creates an Ollama client for the given server URL.
func NewClient(serverURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		Model:      model,
	}
}

// generateRequest is the request body for /api/generate.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// generateResponse is the response from /api/generate.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// tagsResponse is the response from /api/tags.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Models lists the models installed on the Ollama server.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d)", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Available reports whether the Ollama server is reachable.
func (c *Client) Available(ctx context.Context) bool {
	_, err := c.Models(ctx)
	return err == nil
}

// EnsureModel checks that the configured model is installed, switching to the
// first installed model when it is not. Returns the model in effect.
func (c *Client) EnsureModel(ctx context.Context) (string, error) {
	models, err := c.Models(ctx)
	if err != nil {
		return c.Model, err
	}
	for _, name := range models {
		if name == c.Model {
			return c.Model, nil
		}
	}
	if len(models) > 0 {
		c.Model = models[0]
	}
	return c.Model, nil
}

// Generate sends a completion request with a bounded response length.
func (c *Client) Generate(ctx context.Context, systemPrompt, prompt string, maxTokens int) (string, error) {
	reqBody := generateRequest{
		Model:  c.Model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.7,
			NumPredict:  maxTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("API error: %s", genResp.Error)
	}

	return strings.TrimSpace(genResp.Response), nil
}
