// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pdiddy/cheatsheet/internal/generate"
	"github.com/pdiddy/cheatsheet/internal/input"
	"github.com/pdiddy/cheatsheet/internal/render"
	"github.com/pdiddy/cheatsheet/internal/secrets"
	"github.com/pdiddy/cheatsheet/internal/session"
	"github.com/pdiddy/cheatsheet/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [file|-]",
	Short: "Generate a cheatsheet from notes",
	Long: `Generate reads notes from a file (PDF, text, Markdown or HTML), from
stdin when the argument is "-", or from --text, asks the generative model
for a cheatsheet in the chosen style, and writes cheatsheet.md and
cheatsheet.pdf to --out-dir.

Styles: standard, code-heavy, academic, eli5 (see "cheatsheet styles").
If the PDF cannot be rendered the Markdown file is still written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("text", "", "notes text (instead of a file)")
	generateCmd.Flags().String("style", "", "cheatsheet style (default standard)")
	generateCmd.Flags().String("api-key", "", "API key for the provider")
	generateCmd.Flags().String("provider", "", "generation provider: gemini or anthropic (default gemini)")
	generateCmd.Flags().String("model", "", "model identifier (default "+types.DefaultModel+")")
	generateCmd.Flags().Duration("timeout", 0, "HTTP timeout for the generation call (default 2m)")
	generateCmd.Flags().String("out-dir", "", "directory for cheatsheet.md and cheatsheet.pdf (default .)")
	generateCmd.Flags().Bool("no-pdf", false, "write only the Markdown file")
	generateCmd.Flags().Bool("print", false, "also print the Markdown to stdout")
	generateCmd.Flags().String("engine", "", "PDF engine: native or wkhtmltopdf (default native)")
	generateCmd.Flags().String("page-size", "", "page size for the native engine (default A4)")
	generateCmd.Flags().Bool("validate", false, "validate the rendered PDF structure")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}
	out, errw := cmd.OutOrStdout(), cmd.ErrOrStderr()

	notes, err := loadNotes(cmd, args, cfg.Generation.MaxInputBytes)
	if err != nil {
		return err
	}

	provider := cfg.Generation.Provider
	flagKey, _ := cmd.Flags().GetString("api-key")
	apiKey, source := secrets.Resolve(provider, flagKey, configuredKey(provider), loadedSecrets)
	if apiKey == "" && notes.Source != "-" && strings.TrimSpace(notes.Text) != "" {
		apiKey, err = promptKey(errw, provider)
		if err != nil {
			return err
		}
	} else if source != secrets.SourceNone {
		fmt.Fprintf(errw, "Using %s API key from %s\n", provider, source)
	}

	backend, err := generate.NewBackend(cfg.Generation)
	if err != nil {
		return err
	}

	noPDF, _ := cmd.Flags().GetBool("no-pdf")
	var renderer session.PDFRenderer
	if !noPDF {
		r, err := render.NewFromConfig(cfg.Render)
		if err != nil {
			return fmt.Errorf("setting up %s renderer: %w", cfg.Render.Engine, err)
		}
		renderer = r
	}

	s := session.New(generate.New(backend), renderer, session.Options{
		MaxInputBytes: cfg.Generation.MaxInputBytes,
		Model:         cfg.Generation.Model,
	})

	style := cfg.Generation.Style
	fmt.Fprintf(errw, "Generating %s cheatsheet from %s with %s...\n", generate.Label(style), notes.Source, cfg.Generation.Model)
	res, err := s.Generate(cmd.Context(), notes.Text, style, apiKey)
	switch {
	case errors.Is(err, session.ErrMissingCredential):
		fmt.Fprintf(errw, "error: no API key found; pass --api-key or add %s to %s\n", secrets.KeyFile(provider), secrets.DefaultDir)
		return err
	case errors.Is(err, session.ErrEmptyInput):
		fmt.Fprintln(errw, "warning: please provide some text to analyze")
		return err
	case err != nil:
		return err
	}

	if p, _ := cmd.Flags().GetBool("print"); p {
		fmt.Fprintln(out, res.Markdown)
	}
	return writeArtifacts(s, cfg.OutputDir, !noPDF, out)
}

// loadNotes returns the notes from --text, stdin ("-"), or a file.
func loadNotes(cmd *cobra.Command, args []string, maxBytes int64) (input.Document, error) {
	text, _ := cmd.Flags().GetString("text")
	switch {
	case text != "" && len(args) > 0:
		return input.Document{}, errors.New("give either --text or a file, not both")
	case text != "":
		return input.FromText(text), nil
	case len(args) == 0:
		return input.FromText(""), nil
	case args[0] == "-":
		return input.Read(cmd.InOrStdin(), "-", maxBytes)
	default:
		return input.Load(args[0], maxBytes)
	}
}

// promptKey asks for the key without echo when stdin is a terminal. It
// returns an empty key otherwise and the session reports it as missing.
func promptKey(w io.Writer, provider types.Provider) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprintf(w, "Enter %s API key: ", providerName(provider))
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(string(key)), nil
}

func providerName(p types.Provider) string {
	switch p {
	case types.ProviderAnthropic:
		return "Anthropic"
	default:
		return "Gemini"
	}
}

// writeArtifacts saves the session's Markdown and, when withPDF is set,
// its PDF rendering to dir. The Markdown is written first so a render
// failure never loses it.
func writeArtifacts(s *session.Session, dir string, withPDF bool, w io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	md, err := s.MarkdownArtifact()
	if err != nil {
		return err
	}
	mdPath := filepath.Join(dir, md.Filename)
	if err := os.WriteFile(mdPath, md.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mdPath, err)
	}
	fmt.Fprintf(w, "wrote: %s (%s, %d bytes)\n", mdPath, md.MIMEType, len(md.Data))

	if !withPDF {
		return nil
	}
	pdf, err := s.PDFArtifact()
	if err != nil {
		return fmt.Errorf("error creating PDF (markdown kept at %s): %w", mdPath, err)
	}
	pdfPath := filepath.Join(dir, pdf.Filename)
	if err := os.WriteFile(pdfPath, pdf.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", pdfPath, err)
	}
	fmt.Fprintf(w, "wrote: %s (%s, %d bytes)\n", pdfPath, pdf.MIMEType, len(pdf.Data))
	return nil
}
