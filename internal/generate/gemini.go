// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/cheatsheet/internal/httputil"
	"github.com/pdiddy/cheatsheet/pkg/types"
)

// geminiAPIURL is the Gemini API base. Package-level var for test substitution.
var geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiBackend calls the Gemini generateContent endpoint.
type GeminiBackend struct {
	// Model is the model identifier; a leading "models/" is accepted.
	Model     string
	UserAgent string
	Client    *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (g *GeminiBackend) Provider() types.Provider { return types.ProviderGemini }

// Complete sends a single-turn generateContent request.
func (g *GeminiBackend) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	model := strings.TrimPrefix(g.Model, "models/")
	if model == "" {
		model = strings.TrimPrefix(types.DefaultModel, "models/")
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", geminiAPIURL, url.PathEscape(model))

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	headers := map[string]string{"x-goog-api-key": apiKey}
	if g.UserAgent != "" {
		headers["User-Agent"] = g.UserAgent
	}

	var resp geminiResponse
	if err := httputil.PostJSON(ctx, g.Client, endpoint, headers, reqBody, &resp); err != nil {
		return "", apiError(types.ProviderGemini, err)
	}

	if reason := resp.PromptFeedback.BlockReason; reason != "" {
		return "", &Error{Provider: types.ProviderGemini, Reason: "prompt blocked: " + reason}
	}
	if len(resp.Candidates) == 0 {
		return "", &Error{Provider: types.ProviderGemini, Reason: "no candidates in response"}
	}

	cand := resp.Candidates[0]
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 && cand.FinishReason != "" && cand.FinishReason != "STOP" {
		return "", &Error{Provider: types.ProviderGemini, Reason: "generation stopped: " + cand.FinishReason}
	}
	return b.String(), nil
}
