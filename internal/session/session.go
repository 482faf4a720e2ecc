// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the state between a generate action and the
// download actions that follow it. A Session owns the last successfully
// generated Markdown; the generator and renderer it calls are stateless.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/cheatsheet/internal/generate"
	"github.com/pdiddy/cheatsheet/pkg/types"
)

var (
	// ErrMissingCredential blocks generation when no API key is available.
	ErrMissingCredential = errors.New("no API key configured")

	// ErrEmptyInput blocks generation when there is no text to summarise.
	// It is a warning: the user can supply text and try again.
	ErrEmptyInput = errors.New("no input text provided")

	// ErrInputTooLarge blocks generation for text over Options.MaxInputBytes.
	ErrInputTooLarge = errors.New("input text exceeds size limit")

	// ErrNoResult is returned by the artifact methods before any
	// successful generation.
	ErrNoResult = errors.New("no cheatsheet generated yet")
)

// Generator produces cheatsheet Markdown. *generate.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) (string, error)
}

// PDFRenderer turns Markdown into PDF bytes. *render.Renderer implements it.
type PDFRenderer interface {
	Render(markdown string) ([]byte, error)
}

// Options configures a Session.
type Options struct {
	// MaxInputBytes bounds the text sent for generation. Zero means
	// types.DefaultMaxInputBytes.
	MaxInputBytes int64

	// Model is recorded in each Result.
	Model string
}

// Result is one generated cheatsheet. It is never modified once stored.
type Result struct {
	Markdown string
	Style    types.Style
	Model    string
}

// Session is the explicit state of one user session. It is not safe for
// concurrent use; the caller owns it.
type Session struct {
	gen      Generator
	renderer PDFRenderer
	opts     Options

	result *Result
}

// New returns an empty Session.
func New(gen Generator, renderer PDFRenderer, opts Options) *Session {
	if opts.MaxInputBytes <= 0 {
		opts.MaxInputBytes = types.DefaultMaxInputBytes
	}
	return &Session{gen: gen, renderer: renderer, opts: opts}
}

// Generate produces a cheatsheet for text and stores it. The generator is
// only called with a credential and non-blank text. On failure the
// previously stored result, if any, is kept.
func (s *Session) Generate(ctx context.Context, text string, style types.Style, apiKey string) (Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return Result{}, ErrMissingCredential
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyInput
	}
	if int64(len(text)) > s.opts.MaxInputBytes {
		return Result{}, fmt.Errorf("%w: %d > %d bytes", ErrInputTooLarge, len(text), s.opts.MaxInputBytes)
	}

	md, err := s.gen.Generate(ctx, generate.Request{Text: text, Style: style, APIKey: apiKey})
	if err != nil {
		return Result{}, err
	}

	r := Result{Markdown: md, Style: style, Model: s.opts.Model}
	s.result = &r
	return r, nil
}

// Result returns the stored result and whether there is one.
func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// MarkdownArtifact returns the stored Markdown exactly as generated.
func (s *Session) MarkdownArtifact() (types.Artifact, error) {
	if s.result == nil {
		return types.Artifact{}, ErrNoResult
	}
	return types.Artifact{
		Filename: types.MarkdownFilename,
		MIMEType: types.MarkdownMIME,
		Data:     []byte(s.result.Markdown),
	}, nil
}

// PDFArtifact renders the stored Markdown. It renders on every call; a
// failure leaves the stored result untouched.
func (s *Session) PDFArtifact() (types.Artifact, error) {
	if s.result == nil {
		return types.Artifact{}, ErrNoResult
	}
	if s.renderer == nil {
		return types.Artifact{}, errors.New("no renderer configured")
	}

	data, err := s.renderer.Render(s.result.Markdown)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("rendering pdf: %w", err)
	}
	return types.Artifact{
		Filename: types.PDFFilename,
		MIMEType: types.PDFMIME,
		Data:     data,
	}, nil
}
