// Package openai talks to OpenAI-compatible chat completion endpoints.
package openai

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

	"go.uber.org/zap"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 400
	defaultTimeout     = 60 * time.Second
)

// Config configures the client. Zero values fall back to the defaults above.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int

	HTTPClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	c := &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:       strings.TrimSpace(cfg.Model),
		temperature: DefaultTemperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if cfg.Temperature != nil {
		c.temperature = *cfg.Temperature
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c.HTTPClient = &http.Client{Timeout: timeout}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	return c, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateContent sends a system and a user message and returns the first
// choice. The response is requested in JSON object mode.
func (c *Client) GenerateContent(ctx context.Context, system, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("make request", zap.String("url", req.URL.String()), zap.String("model", c.model))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var decoded chatResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && decoded.Error != nil {
			return "", fmt.Errorf("openai api returned status %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return "", fmt.Errorf("openai api returned status %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w", decodeErr)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("openai api error: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai api returned empty content")
	}

	return content, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
