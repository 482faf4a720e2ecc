// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate turns study notes into cheatsheet Markdown with a
// generative-text API.
//
// A Generator renders the fixed cheatsheet prompt and makes one synchronous
// call through a Backend. The API key travels with each call; nothing is
// configured process-wide, so Generators may be used from several
// goroutines with different keys. Failures come back as *Error, never as
// text that could be mistaken for a cheatsheet.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/cheatsheet/internal/httputil"
	"github.com/pdiddy/cheatsheet/pkg/types"
)

var (
	// ErrGeneration matches every *Error under errors.Is.
	ErrGeneration = errors.New("generation failed")

	// ErrUnknownProvider is returned by NewBackend for an unsupported provider.
	ErrUnknownProvider = errors.New("unknown generation provider")
)

// Backend abstracts the generative API so tests can supply a fake.
type Backend interface {
	// Provider names the service behind the backend.
	Provider() types.Provider

	// Complete sends prompt with apiKey and returns the generated text.
	Complete(ctx context.Context, apiKey, prompt string) (string, error)
}

// Request is one cheatsheet generation.
type Request struct {
	Text   string
	Style  types.Style
	APIKey string
}

// Error is a generation failure: authentication, quota, network, a
// blocked prompt, or a malformed or empty response.
type Error struct {
	Provider   types.Provider
	StatusCode int
	Reason     string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: generation failed", e.Provider)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrGeneration) match any *Error.
func (e *Error) Is(target error) bool { return target == ErrGeneration }

// Generator produces cheatsheet Markdown through a Backend.
type Generator struct {
	backend Backend
}

// New returns a Generator that calls backend.
func New(backend Backend) *Generator {
	return &Generator{backend: backend}
}

// Provider reports which service the Generator calls.
func (g *Generator) Provider() types.Provider {
	return g.backend.Provider()
}

// Generate renders the prompt for req and returns the model's Markdown.
// Empty text is forwarded as-is; refusing empty input is the caller's
// policy. There is no retry and no streaming.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if !req.Style.Valid() {
		return "", fmt.Errorf("%w: %q", types.ErrUnknownStyle, req.Style)
	}

	prompt, err := RenderPrompt(req.Style, req.Text)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := g.backend.Complete(ctx, req.APIKey, prompt)
	if err != nil {
		var genErr *Error
		if errors.As(err, &genErr) {
			return "", genErr
		}
		return "", &Error{Provider: g.backend.Provider(), Reason: err.Error(), Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{Provider: g.backend.Provider(), Reason: "empty response"}
	}
	return text, nil
}

// NewBackend builds the Backend selected by cfg.Provider. The HTTP client
// timeout is cfg.Timeout.
func NewBackend(cfg types.GenerationConfig) (Backend, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case types.ProviderGemini, "":
		return &GeminiBackend{Model: cfg.Model, UserAgent: cfg.UserAgent, Client: client}, nil
	case types.ProviderAnthropic:
		return &ClaudeBackend{Model: cfg.Model, UserAgent: cfg.UserAgent, Client: client}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// apiErrorEnvelope covers the error bodies of both supported APIs:
// {"error": {"message": ..., "status"|"type": ...}}.
type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		Type    string `json:"type"`
	} `json:"error"`
}

// apiError converts a transport or HTTP failure into an *Error.
func apiError(provider types.Provider, err error) *Error {
	var se *httputil.StatusError
	if !errors.As(err, &se) {
		return &Error{Provider: provider, Reason: err.Error(), Err: err}
	}

	reason := http.StatusText(se.StatusCode)
	var env apiErrorEnvelope
	if json.Unmarshal(se.Body, &env) == nil && env.Error.Message != "" {
		reason = env.Error.Message
	}
	return &Error{Provider: provider, StatusCode: se.StatusCode, Reason: reason, Err: err}
}
