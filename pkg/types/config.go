// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. It is the only bound on how long a
	// generation call may block.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cheatsheet/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Provider identifies the generative-text service.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the API: gemini (default) or anthropic.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "models/gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API. It is never stored in
	// process-wide state; callers pass it on every generation request.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// GenerationConfig holds settings for the cheatsheet generation stage.
type GenerationConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// Style is the default cheatsheet style when none is given on the command line.
	Style Style `json:"style" yaml:"style"`

	// MaxInputBytes bounds the notes text sent to the API (default 1 MiB).
	MaxInputBytes int64 `json:"max_input_bytes" yaml:"max_input_bytes"`
}

// RenderEngine identifies the HTML-to-PDF engine.
type RenderEngine string

const (
	EngineNative      RenderEngine = "native"
	EngineWkhtmltopdf RenderEngine = "wkhtmltopdf"
)

// RenderConfig holds settings for the Markdown → HTML → PDF stage.
type RenderConfig struct {
	// Engine selects the HTML-to-PDF engine: native (default) or wkhtmltopdf.
	Engine RenderEngine `json:"engine" yaml:"engine"`

	// PageSize is the paper size for the native engine: A4 (default) or Letter.
	PageSize string `json:"page_size" yaml:"page_size"`

	// Validate runs a structural PDF validation pass over the rendered bytes.
	Validate bool `json:"validate" yaml:"validate"`

	// ContainerImage is the wkhtmltopdf image used by the container engine.
	ContainerImage string `json:"container_image" yaml:"container_image"`

	// MaxMarkdownBytes bounds the Markdown accepted by the renderer (default 2 MiB).
	MaxMarkdownBytes int64 `json:"max_markdown_bytes" yaml:"max_markdown_bytes"`
}

// Defaults applied when a config value is zero.
const (
	DefaultModel            = "models/gemini-2.5-flash"
	DefaultAnthropicModel   = "claude-sonnet-4-5-20250929"
	DefaultTimeout          = 120 * time.Second
	DefaultUserAgent        = "cheatsheet/0.1"
	DefaultMaxInputBytes    = 1 << 20
	DefaultMaxMarkdownBytes = 2 << 20
	DefaultPageSize         = "A4"
	DefaultContainerImage   = "surnet/alpine-wkhtmltopdf:3.21.2-0.12.6-full"
)

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Render     RenderConfig     `json:"render" yaml:"render"`

	// OutputDir is where generated artifacts are written.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	g := &c.Generation
	if g.Provider == "" {
		g.Provider = ProviderGemini
	}
	if g.Model == "" {
		g.Model = DefaultModel
		if g.Provider == ProviderAnthropic {
			g.Model = DefaultAnthropicModel
		}
	}
	if g.Timeout <= 0 {
		g.Timeout = DefaultTimeout
	}
	if g.UserAgent == "" {
		g.UserAgent = DefaultUserAgent
	}
	if g.Style == "" {
		g.Style = StyleStandard
	}
	if g.MaxInputBytes <= 0 {
		g.MaxInputBytes = DefaultMaxInputBytes
	}

	r := &c.Render
	if r.Engine == "" {
		r.Engine = EngineNative
	}
	if r.PageSize == "" {
		r.PageSize = DefaultPageSize
	}
	if r.ContainerImage == "" {
		r.ContainerImage = DefaultContainerImage
	}
	if r.MaxMarkdownBytes <= 0 {
		r.MaxMarkdownBytes = DefaultMaxMarkdownBytes
	}

	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return c
}
