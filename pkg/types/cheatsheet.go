// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration and domain types shared by the
// extraction, generation, rendering, and session packages.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Style is the cheatsheet style preference, a closed set selected once per
// request. The generative API receives its display label as free text.
type Style string

const (
	StyleStandard  Style = "standard"
	StyleCodeHeavy Style = "code-heavy"
	StyleAcademic  Style = "academic"
	StyleELI5      Style = "eli5"
)

// AllStyles lists every valid Style in presentation order.
var AllStyles = []Style{StyleStandard, StyleCodeHeavy, StyleAcademic, StyleELI5}

// ErrUnknownStyle is returned by ParseStyle for values outside AllStyles.
var ErrUnknownStyle = errors.New("unknown cheatsheet style")

// styleAliases maps display labels and short forms to canonical styles.
var styleAliases = map[string]Style{
	"academic/exam prep":        StyleAcademic,
	"exam":                      StyleAcademic,
	"exam-prep":                 StyleAcademic,
	"code":                      StyleCodeHeavy,
	"eli5 (explain like i'm 5)": StyleELI5,
	"explain like i'm 5":        StyleELI5,
}

// ParseStyle accepts a canonical style name or a display label,
// case-insensitively.
func ParseStyle(s string) (Style, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, st := range AllStyles {
		if key == string(st) {
			return st, nil
		}
	}
	if st, ok := styleAliases[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Valid reports whether s is one of AllStyles.
func (s Style) Valid() bool {
	for _, st := range AllStyles {
		if s == st {
			return true
		}
	}
	return false
}

// Download names and media types for the two output artifacts.
const (
	MarkdownFilename = "cheatsheet.md"
	MarkdownMIME     = "text/markdown"
	PDFFilename      = "cheatsheet.pdf"
	PDFMIME          = "application/pdf"
)

// Artifact is one downloadable output of a session.
type Artifact struct {
	Filename string `json:"filename" yaml:"filename"`
	MIMEType string `json:"mime_type" yaml:"mime_type"`
	Data     []byte `json:"-" yaml:"-"`
}
