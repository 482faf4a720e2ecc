// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cheatsheet/internal/input"
	"github.com/pdiddy/cheatsheet/internal/render"
	"github.com/pdiddy/cheatsheet/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render <file.md|->",
	Short: "Render an existing Markdown cheatsheet to PDF",
	Long: `Render converts a Markdown cheatsheet to a styled PDF without calling
the generative API. The output is written to --out (default
cheatsheet.pdf in --out-dir). Use --html to write the intermediate HTML
document instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("out", "", "output file (default <out-dir>/cheatsheet.pdf)")
	renderCmd.Flags().String("out-dir", "", "output directory (default .)")
	renderCmd.Flags().String("engine", "", "PDF engine: native or wkhtmltopdf (default native)")
	renderCmd.Flags().String("page-size", "", "page size for the native engine (default A4)")
	renderCmd.Flags().Bool("validate", false, "validate the rendered PDF structure")
	renderCmd.Flags().Bool("html", false, "write the styled HTML document instead of PDF")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}

	var doc input.Document
	if args[0] == "-" {
		doc, err = input.Read(cmd.InOrStdin(), "-", cfg.Render.MaxMarkdownBytes)
	} else {
		doc, err = input.Load(args[0], cfg.Render.MaxMarkdownBytes)
	}
	if err != nil {
		return err
	}

	renderer, err := render.NewFromConfig(cfg.Render)
	if err != nil {
		return err
	}

	asHTML, _ := cmd.Flags().GetBool("html")
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		name := types.PDFFilename
		if asHTML {
			name = "cheatsheet.html"
		}
		outPath = filepath.Join(cfg.OutputDir, name)
	}

	var data []byte
	if asHTML {
		html, err := renderer.HTML(doc.Text)
		if err != nil {
			return err
		}
		data = []byte(html)
	} else {
		data, err = renderer.Render(doc.Text)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote: %s (%d bytes)\n", outPath, len(data))
	return nil
}
