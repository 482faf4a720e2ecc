// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

type rgb struct{ r, g, b int }

var (
	black     = rgb{0, 0, 0}
	linkBlue  = rgb{0x1a, 0x0d, 0xab}
	quoteGray = rgb{0x55, 0x55, 0x55}
	ruleGray  = rgb{0xdd, 0xdd, 0xdd}
)

var namedColors = map[string]rgb{
	"black":  black,
	"white":  {0xff, 0xff, 0xff},
	"gray":   {0x80, 0x80, 0x80},
	"grey":   {0x80, 0x80, 0x80},
	"silver": {0xc0, 0xc0, 0xc0},
	"red":    {0xff, 0x00, 0x00},
	"maroon": {0x80, 0x00, 0x00},
	"green":  {0x00, 0x80, 0x00},
	"blue":   {0x00, 0x00, 0xff},
	"navy":   {0x00, 0x00, 0x80},
	"teal":   {0x00, 0x80, 0x80},
	"purple": {0x80, 0x00, 0x80},
}

// edge is one border: zero width means none.
type edge struct {
	width float64
	color rgb
}

func (e edge) visible() bool { return e.width > 0 }

// style is the computed style of a node. Font and colour properties
// inherit; box properties do not.
type style struct {
	family    string
	size      float64
	bold      bool
	italic    bool
	underline bool
	color     rgb
	align     string
	link      string

	background   *rgb
	border       edge
	borderBottom edge
	padding      float64
	marginTop    float64
	marginBottom float64
}

var rootStyle = style{family: familySans, size: 12, color: black, align: "left"}

func (s style) fontStyle() string {
	var b strings.Builder
	if s.bold {
		b.WriteByte('B')
	}
	if s.italic {
		b.WriteByte('I')
	}
	if s.underline {
		b.WriteByte('U')
	}
	return b.String()
}

func (s style) lineHeight() float64 { return s.size * 1.35 }

// stylesheet maps a simple selector to its declarations in source order.
// Only type selectors ("h1", "td") are matched.
type stylesheet map[string][]*css.Declaration

func parseStylesheet(text string) stylesheet {
	sheet := stylesheet{}
	parsed, err := parser.Parse(text)
	if err != nil {
		return sheet
	}
	for _, rule := range parsed.Rules {
		if rule.Kind != css.QualifiedRule {
			continue
		}
		for _, sel := range rule.Selectors {
			sel = strings.ToLower(strings.TrimSpace(sel))
			sheet[sel] = append(sheet[sel], rule.Declarations...)
		}
	}
	return sheet
}

// compute derives the style of element n from its parent's style: user
// agent defaults, then stylesheet rules for the tag, then the inline
// style attribute.
func (sheet stylesheet) compute(n *html.Node, parent style) style {
	st := parent
	st.background = nil
	st.border = edge{}
	st.borderBottom = edge{}
	st.padding = 0
	st.marginTop = 0
	st.marginBottom = 0

	tag := n.Data
	applyDefaults(tag, &st, parent)
	for _, d := range sheet[tag] {
		applyDeclaration(&st, d.Property, d.Value, parent.size)
	}
	if inline := attr(n, "style"); inline != "" {
		// The last declaration needs a terminator or its value is lost.
		if decls, err := parser.ParseDeclarations(inline + ";"); err == nil {
			for _, d := range decls {
				applyDeclaration(&st, d.Property, d.Value, parent.size)
			}
		}
	}
	if align := attr(n, "align"); align != "" {
		st.align = strings.ToLower(align)
	}
	return st
}

func applyDefaults(tag string, st *style, parent style) {
	switch tag {
	case "h1":
		st.size, st.bold = 20, true
		st.marginTop, st.marginBottom = 12, 8
	case "h2":
		st.size, st.bold = 16, true
		st.marginTop, st.marginBottom = 10, 6
	case "h3":
		st.size, st.bold = 14, true
		st.marginTop, st.marginBottom = 8, 5
	case "h4", "h5", "h6":
		st.bold = true
		st.marginTop, st.marginBottom = 6, 4
	case "p", "ul", "ol", "dl":
		st.marginBottom = 6
	case "strong", "b", "dt":
		st.bold = true
	case "em", "i", "cite", "var":
		st.italic = true
	case "code", "kbd", "samp", "tt", "pre":
		if parent.family != familyMono {
			st.size = parent.size * 0.9
		}
		st.family = familyMono
	case "a":
		st.color = linkBlue
		st.underline = true
	case "blockquote":
		st.color = quoteGray
		st.marginTop, st.marginBottom = 4, 6
	case "table":
		st.marginTop, st.marginBottom = 6, 6
	case "th":
		st.bold = true
		st.padding = 4
	case "td":
		st.padding = 4
	}
	if tag == "pre" {
		st.marginTop, st.marginBottom = 4, 8
	}
}

func applyDeclaration(st *style, prop, value string, parentSize float64) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return
	}
	switch strings.ToLower(prop) {
	case "font-family":
		st.family = fontFamily(value)
	case "font-size":
		if v, ok := length(value, parentSize); ok && v > 0 {
			st.size = v
		}
	case "font-weight":
		if value == "bold" || value == "bolder" {
			st.bold = true
		} else if n, err := strconv.Atoi(value); err == nil {
			st.bold = n >= 600
		} else if value == "normal" {
			st.bold = false
		}
	case "font-style":
		st.italic = value == "italic" || value == "oblique"
	case "color":
		if c, ok := parseColor(value); ok {
			st.color = c
		}
	case "background-color", "background":
		if c, ok := parseColor(value); ok {
			st.background = &c
		}
	case "border":
		st.border = parseEdge(value, st.size)
	case "border-bottom":
		st.borderBottom = parseEdge(value, st.size)
	case "padding":
		if fields := strings.Fields(value); len(fields) > 0 {
			if v, ok := length(fields[0], st.size); ok {
				st.padding = v
			}
		}
	case "margin":
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return
		}
		bottom := fields[0]
		if len(fields) >= 3 {
			bottom = fields[2]
		}
		if v, ok := length(fields[0], st.size); ok {
			st.marginTop = v
		}
		if v, ok := length(bottom, st.size); ok {
			st.marginBottom = v
		}
	case "margin-top":
		if v, ok := length(value, st.size); ok {
			st.marginTop = v
		}
	case "margin-bottom":
		if v, ok := length(value, st.size); ok {
			st.marginBottom = v
		}
	case "text-align":
		st.align = value
	case "text-decoration":
		st.underline = strings.Contains(value, "underline")
	}
}

func fontFamily(value string) string {
	for _, name := range strings.Split(value, ",") {
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		switch {
		case strings.Contains(name, "courier"), strings.Contains(name, "mono"):
			return familyMono
		case strings.Contains(name, "helvetica"), strings.Contains(name, "arial"), strings.Contains(name, "serif"):
			return familySans
		}
	}
	return familySans
}

// length converts a CSS length to points. em is the font size in points
// that "em" units resolve against. Percentages are not supported.
func length(value string, em float64) (float64, bool) {
	value = strings.TrimSpace(value)
	units := []struct {
		suffix string
		scale  float64
	}{
		{"pt", 1},
		{"px", 0.75},
		{"rem", rootStyle.size},
		{"em", em},
		{"mm", 72 / 25.4},
		{"cm", 72 / 2.54},
		{"in", 72},
	}
	for _, u := range units {
		if num, ok := strings.CutSuffix(value, u.suffix); ok {
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, false
			}
			return v * u.scale, true
		}
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return v * 0.75, true
}

func parseColor(value string) (rgb, bool) {
	value = strings.TrimSpace(value)
	if c, ok := namedColors[value]; ok {
		return c, true
	}
	if hex, ok := strings.CutPrefix(value, "#"); ok {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return rgb{}, false
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return rgb{}, false
		}
		return rgb{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}, true
	}
	if args, ok := strings.CutPrefix(value, "rgb("); ok {
		parts := strings.Split(strings.TrimSuffix(args, ")"), ",")
		if len(parts) != 3 {
			return rgb{}, false
		}
		var c [3]int
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return rgb{}, false
			}
			c[i] = n
		}
		return rgb{c[0], c[1], c[2]}, true
	}
	return rgb{}, false
}

// parseEdge reads a border shorthand such as "1px solid #ddd".
func parseEdge(value string, em float64) edge {
	var e edge
	styled := false
	for _, tok := range strings.Fields(value) {
		switch tok {
		case "none", "hidden":
			return edge{}
		case "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset":
			styled = true
			continue
		}
		if v, ok := length(tok, em); ok {
			e.width = v
		} else if c, ok := parseColor(tok); ok {
			e.color = c
		}
	}
	if e.width == 0 && styled {
		e.width = 0.75
	}
	return e
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
