// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"net/http"
	"strings"

	"github.com/pdiddy/cheatsheet/internal/httputil"
	"github.com/pdiddy/cheatsheet/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// claudeMaxTokens bounds the length of a generated cheatsheet.
const claudeMaxTokens = 8192

// ClaudeBackend calls the Claude Messages API.
type ClaudeBackend struct {
	Model     string
	UserAgent string
	Client    *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (c *ClaudeBackend) Provider() types.Provider { return types.ProviderAnthropic }

// Complete sends prompt as a single user message.
func (c *ClaudeBackend) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	model := c.Model
	if model == "" {
		model = types.DefaultAnthropicModel
	}

	reqBody := claudeRequest{
		Model:     model,
		MaxTokens: claudeMaxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": "2023-06-01",
	}
	if c.UserAgent != "" {
		headers["User-Agent"] = c.UserAgent
	}

	var resp claudeResponse
	if err := httputil.PostJSON(ctx, c.Client, claudeAPIURL, headers, reqBody, &resp); err != nil {
		return "", apiError(types.ProviderAnthropic, err)
	}

	if len(resp.Content) == 0 {
		return "", &Error{Provider: types.ProviderAnthropic, Reason: "empty content"}
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		b.WriteString(block.Text)
	}
	return b.String(), nil
}
