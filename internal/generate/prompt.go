// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cheatsheet/pkg/types"
)

// cheatsheetPromptTmpl is the fixed instruction sent with every request.
// The notes are embedded verbatim.
var cheatsheetPromptTmpl = template.Must(template.New("cheatsheet").Parse(`You are an expert technical writer. Convert these notes into a concise cheatsheet.
Style: {{.Style}}
Format: Markdown, Tables, Bullet points, Bold key terms.
Important: Do not start with "Here is a cheatsheet". Just give the content.
Notes: {{.Notes}}
`))

//go:embed styles.yaml
var stylesYAML []byte

// StyleInfo describes one entry of the style catalog.
type StyleInfo struct {
	Name    types.Style `yaml:"name"`
	Label   string      `yaml:"label"`
	Summary string      `yaml:"summary"`
}

type styleCatalog struct {
	Styles []StyleInfo `yaml:"styles"`
}

var loadStyles = sync.OnceValues(func() ([]StyleInfo, error) {
	var c styleCatalog
	if err := yaml.Unmarshal(stylesYAML, &c); err != nil {
		return nil, fmt.Errorf("parsing style catalog: %w", err)
	}
	for _, s := range c.Styles {
		if !s.Name.Valid() {
			return nil, fmt.Errorf("style catalog: %w: %q", types.ErrUnknownStyle, s.Name)
		}
	}
	return c.Styles, nil
})

// Styles returns the style catalog in presentation order.
func Styles() ([]StyleInfo, error) {
	return loadStyles()
}

// Label returns the display label the model sees for s.
func Label(s types.Style) string {
	styles, err := loadStyles()
	if err == nil {
		for _, info := range styles {
			if info.Name == s {
				return info.Label
			}
		}
	}
	return string(s)
}

// RenderPrompt executes the cheatsheet prompt template.
func RenderPrompt(style types.Style, notes string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Style, Notes string }{Style: Label(style), Notes: notes}
	if err := cheatsheetPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
