// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns cheatsheet Markdown into a styled PDF.
//
// Rendering runs in three steps: Markdown to an HTML fragment (goldmark,
// with tables and fenced code), the fragment wrapped in a fixed HTML
// document carrying the cheatsheet stylesheet, and that document laid out
// as PDF by an Engine. Generated Markdown is untrusted: raw HTML is
// dropped, input size is bounded, and an engine failure yields no bytes
// at all rather than a partial document.
package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdiddy/cheatsheet/internal/container"
	"github.com/pdiddy/cheatsheet/pkg/types"
)

var (
	// ErrRender matches every *Error under errors.Is.
	ErrRender = errors.New("render failed")

	// ErrTooLarge is wrapped by *Error when the Markdown exceeds the limit.
	ErrTooLarge = errors.New("markdown exceeds size limit")

	// ErrUnknownEngine is returned by NewEngine for an unsupported engine name.
	ErrUnknownEngine = errors.New("unknown render engine")
)

var pdfHeader = []byte("%PDF-")

// Error is a rendering failure. Stage names the step that failed:
// "input", "markdown", "template", "engine", or "validate".
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRender) match any *Error.
func (e *Error) Is(target error) bool { return target == ErrRender }

// Engine converts a complete HTML document into PDF bytes.
type Engine interface {
	PDF(html string) ([]byte, error)
}

// Renderer runs the Markdown → HTML → PDF pipeline. It holds no state
// between calls.
type Renderer struct {
	engine   Engine
	maxBytes int64
	validate bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxBytes bounds the Markdown accepted by Render.
func WithMaxBytes(n int64) Option {
	return func(r *Renderer) {
		r.maxBytes = n
	}
}

// WithValidation enables a structural validation pass over the engine output.
func WithValidation(on bool) Option {
	return func(r *Renderer) {
		r.validate = on
	}
}

// New returns a Renderer that lays documents out with engine.
func New(engine Engine, opts ...Option) *Renderer {
	r := &Renderer{engine: engine, maxBytes: types.DefaultMaxMarkdownBytes}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewFromConfig builds the engine named by cfg and a Renderer around it.
func NewFromConfig(cfg types.RenderConfig) (*Renderer, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return New(engine, WithMaxBytes(cfg.MaxMarkdownBytes), WithValidation(cfg.Validate)), nil
}

// NewEngine returns the Engine selected by cfg.Engine. The wkhtmltopdf
// engine needs a working docker or podman.
func NewEngine(cfg types.RenderConfig) (Engine, error) {
	switch cfg.Engine {
	case types.EngineNative, "":
		return NewNativeEngine(cfg.PageSize)
	case types.EngineWkhtmltopdf:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		image := cfg.ContainerImage
		if image == "" {
			image = types.DefaultContainerImage
		}
		return NewContainerEngine(rt, image)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

// HTML runs the first two steps and returns the styled HTML document.
func (r *Renderer) HTML(markdown string) (string, error) {
	if r.maxBytes > 0 && int64(len(markdown)) > r.maxBytes {
		return "", &Error{Stage: "input", Err: fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(markdown), r.maxBytes)}
	}

	fragment, err := MarkdownToHTML(markdown)
	if err != nil {
		return "", &Error{Stage: "markdown", Err: err}
	}

	doc, err := Document(fragment)
	if err != nil {
		return "", &Error{Stage: "template", Err: err}
	}
	return doc, nil
}

// Render returns the PDF for markdown. On any failure the returned bytes
// are nil and the error is an *Error.
func (r *Renderer) Render(markdown string) (pdf []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pdf = nil
			err = &Error{Stage: "engine", Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	doc, err := r.HTML(markdown)
	if err != nil {
		return nil, err
	}

	out, err := r.engine.PDF(doc)
	if err != nil {
		return nil, &Error{Stage: "engine", Err: err}
	}
	if !bytes.HasPrefix(out, pdfHeader) {
		return nil, &Error{Stage: "engine", Err: errors.New("engine output is not a PDF")}
	}

	if r.validate {
		if err := validatePDF(out); err != nil {
			return nil, &Error{Stage: "validate", Err: err}
		}
	}
	return out, nil
}
