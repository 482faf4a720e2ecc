// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want rgb
		ok   bool
	}{
		{"#2E86C1", rgb{0x2e, 0x86, 0xc1}, true},
		{"#ddd", rgb{0xdd, 0xdd, 0xdd}, true},
		{"navy", rgb{0, 0, 0x80}, true},
		{"rgb(1, 2, 3)", rgb{1, 2, 3}, true},
		{"rgb(1, 2, 300)", rgb{}, false},
		{"#12345", rgb{}, false},
		{"transparent", rgb{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseColor(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		in   string
		em   float64
		want float64
		ok   bool
	}{
		{"12pt", 12, 12, true},
		{"20px", 12, 15, true},
		{"2em", 10, 20, true},
		{"1rem", 30, 12, true},
		{"0", 12, 0, true},
		{"1in", 12, 72, true},
		{"100%", 12, 0, false},
		{"thin", 12, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := length(tt.in, tt.em)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseEdge(t *testing.T) {
	e := parseEdge("2px solid #2e86c1", 12)
	assert.InDelta(t, 1.5, e.width, 0.001)
	assert.Equal(t, rgb{0x2e, 0x86, 0xc1}, e.color)

	assert.False(t, parseEdge("none", 12).visible())
	assert.InDelta(t, 0.75, parseEdge("solid", 12).width, 0.001)
}

func TestStylesheet_Compute(t *testing.T) {
	sheet := parseStylesheet(Stylesheet)
	body := sheet.compute(&html.Node{Type: html.ElementNode, Data: "body"}, rootStyle)
	assert.Equal(t, familySans, body.family)
	assert.InDelta(t, 12, body.size, 0.001)

	h1 := sheet.compute(&html.Node{Type: html.ElementNode, Data: "h1"}, body)
	assert.Equal(t, rgb{0x2e, 0x86, 0xc1}, h1.color)
	assert.True(t, h1.bold)
	assert.True(t, h1.borderBottom.visible())

	th := sheet.compute(&html.Node{Type: html.ElementNode, Data: "th"}, body)
	require.NotNil(t, th.background)
	assert.Equal(t, rgb{0xf2, 0xf2, 0xf2}, *th.background)
	assert.InDelta(t, 6, th.padding, 0.001)
	assert.True(t, th.border.visible())
	assert.True(t, th.bold)

	pre := sheet.compute(&html.Node{Type: html.ElementNode, Data: "pre"}, body)
	assert.Equal(t, familyMono, pre.family)
	code := sheet.compute(&html.Node{Type: html.ElementNode, Data: "code"}, pre)
	assert.InDelta(t, pre.size, code.size, 0.001, "code inside pre keeps the block's size")

	td := sheet.compute(&html.Node{
		Type: html.ElementNode,
		Data: "td",
		Attr: []html.Attribute{{Key: "style", Val: "text-align: center; color: red"}},
	}, body)
	assert.Equal(t, "center", td.align)
	assert.Equal(t, rgb{0xff, 0, 0}, td.color)
	assert.Nil(t, td.background, "background does not inherit")
}

func TestStylesheet_InlineDeclarations(t *testing.T) {
	sheet := parseStylesheet(Stylesheet)
	tests := []struct {
		inline    string
		wantAlign string
		wantColor rgb
	}{
		{"text-align:center", "center", black},
		{"text-align: right;", "right", black},
		{"color: red", "left", rgb{0xff, 0, 0}},
		{"text-align: left; color: #00f", "left", rgb{0, 0, 0xff}},
		{"text-align:", "left", black},
	}
	for _, tt := range tests {
		t.Run(tt.inline, func(t *testing.T) {
			td := sheet.compute(&html.Node{
				Type: html.ElementNode,
				Data: "td",
				Attr: []html.Attribute{{Key: "style", Val: tt.inline}},
			}, rootStyle)
			assert.Equal(t, tt.wantAlign, td.align)
			assert.Equal(t, tt.wantColor, td.color)
		})
	}
}

func TestStylesheet_TableAlignment(t *testing.T) {
	fragment, err := MarkdownToHTML("| a | b | c |\n|:-:|--:|---|\n| 1 | 2 | 3 |\n")
	require.NoError(t, err)
	doc, err := html.Parse(strings.NewReader(fragment))
	require.NoError(t, err)

	sheet := parseStylesheet(Stylesheet)
	cells := findAll(doc, "td")
	require.Len(t, cells, 3)

	var got []string
	for _, td := range cells {
		got = append(got, sheet.compute(td, rootStyle).align)
	}
	assert.Equal(t, []string{"center", "right", "left"}, got)
}

func TestFontFamily(t *testing.T) {
	assert.Equal(t, familyMono, fontFamily("courier, monospace"))
	assert.Equal(t, familySans, fontFamily(`"times new roman", serif`))
	assert.Equal(t, familyMono, fontFamily("ui-monospace"))
	assert.Equal(t, familySans, fontFamily("helvetica, sans-serif"))
	assert.Equal(t, familySans, fontFamily("comic sans"))
}
