// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai is a thin client for an optional text-generation endpoint.
// The pipeline composes structured answers without it; the client only
// rephrases an already-validated answer when the caller asks for prose.
// Implements: prd008-generation (R1);
//
//	docs/ARCHITECTURE § Generation.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/counsel-engine/internal/httputil"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

const defaultTimeout = 45 * time.Second

// Client calls the generation endpoint.
type Client struct {
	cfg    types.GenerationConfig
	client *http.Client
	log    *zap.Logger
}

// NewClient builds a generation client. A nil logger disables diagnostics.
func NewClient(cfg types.GenerationConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate sends the prompt and returns the generated text. Per R1.2.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("generation endpoint not configured")
	}

	body, err := json.Marshal(generateRequest{Model: c.cfg.Model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encoding generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.Endpoint+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, snippet)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding generation response: %w", err)
	}
	if parsed.Text == "" {
		return "", fmt.Errorf("generation endpoint returned empty text")
	}
	return parsed.Text, nil
}
