// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cheatsheet/internal/extract"
	"github.com/pdiddy/cheatsheet/pkg/types"
)

const tableDoc = "# Title\n\n| A | B |\n|---|---|\n| 1 | 2 |\n"

func parseHTML(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func nativeRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	engine, err := NewNativeEngine("A4")
	require.NoError(t, err)
	return New(engine, opts...)
}

// --- Markdown → HTML ---

func TestMarkdownToHTML_Table(t *testing.T) {
	fragment, err := MarkdownToHTML(tableDoc)
	require.NoError(t, err)

	doc := parseHTML(t, fragment)
	assert.Equal(t, "Title", doc.Find("h1").Text())
	assert.Equal(t, 1, doc.Find("table").Length())
	assert.Equal(t, 2, doc.Find("thead th").Length())
	assert.Equal(t, "A", doc.Find("thead th").First().Text())
	assert.Equal(t, 1, doc.Find("tbody tr").Length())
	assert.Equal(t, "2", doc.Find("tbody td").Last().Text())
}

func TestMarkdownToHTML_FencedCodeKeepsContent(t *testing.T) {
	code := "if a < b && c > d:\n    print(\"**not bold**\")\n"
	fragment, err := MarkdownToHTML("```python\n" + code + "```\n")
	require.NoError(t, err)

	doc := parseHTML(t, fragment)
	block := doc.Find("pre > code")
	require.Equal(t, 1, block.Length())
	assert.Equal(t, code, block.Text())
	assert.Equal(t, 0, doc.Find("strong").Length())
	assert.True(t, block.HasClass("language-python"))
}

func TestMarkdownToHTML_DropsRawHTML(t *testing.T) {
	fragment, err := MarkdownToHTML("<script>alert(1)</script>\n\nSafe <b onclick=\"x()\">text</b>\n")
	require.NoError(t, err)

	doc := parseHTML(t, fragment)
	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, 0, doc.Find("b").Length())
	assert.NotContains(t, fragment, "alert(1)")
}

func TestMarkdownToHTML_Strikethrough(t *testing.T) {
	fragment, err := MarkdownToHTML("~~old~~ new")
	require.NoError(t, err)
	assert.Equal(t, "old", parseHTML(t, fragment).Find("del").Text())
}

func TestDocument(t *testing.T) {
	doc, err := Document("<h2>Section</h2>")
	require.NoError(t, err)

	parsed := parseHTML(t, doc)
	assert.Equal(t, "Section", parsed.Find("body h2").Text())
	assert.Contains(t, parsed.Find("head style").Text(), "border-bottom: 2px solid #2E86C1")
	assert.Contains(t, parsed.Find("head style").Text(), "th { background-color: #f2f2f2; }")
}

// --- Renderer ---

func TestRender_ProducesPDF(t *testing.T) {
	out, err := nativeRenderer(t).Render(tableDoc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	text, err := extract.ExtractBytes(out)
	require.NoError(t, err)
	assert.Contains(t, text, "Title")
}

func TestRender_Idempotent(t *testing.T) {
	r := nativeRenderer(t)
	md := tableDoc + "\n## Notes\n\n- **bold** and `code`\n- [link](https://example.com)\n\n```go\nfmt.Println(\"hi\")\n```\n"

	first, err := r.Render(md)
	require.NoError(t, err)
	second, err := r.Render(md)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "same markdown must give identical bytes")
}

func TestRender_Documents(t *testing.T) {
	tests := []struct {
		name string
		md   string
	}{
		{name: "empty", md: ""},
		{name: "whitespace", md: "   \n\n"},
		{name: "nested lists", md: "1. one\n   - inner\n     - deeper\n2. two\n\n- loose\n\n- list\n"},
		{name: "quote and rule", md: "> quoted **text**\n\n---\n\nafter"},
		{name: "deep nesting", md: strings.Repeat("> ", 300) + "deep"},
		{name: "long unbroken word", md: strings.Repeat("x", 5000)},
		{name: "wide code line", md: "```\n" + strings.Repeat("0123456789", 80) + "\n\ttabbed\n```\n"},
		{name: "ragged table", md: "| a | b | c |\n|---|:-:|--:|\n| 1 |\n| 1 | 2 | 3 |\n"},
		{name: "non latin text", md: "# Ελληνικά 日本語\n\n€ – “quotes”"},
		{name: "astral plane", md: "smile 🙂 and 𝔸 in a `code 🙂` span"},
		{name: "hard breaks", md: "line one  \nline two\\\nline three"},
	}
	r := nativeRenderer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.md)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}

// drawnText decodes the text strings shown on the first page. Text set
// in the embedded fonts is stored as UTF-16BE code units.
func drawnText(t *testing.T, out []byte) []string {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	rc := reader.Page(1).V.Key("Contents").Reader()
	defer rc.Close()
	stream, err := io.ReadAll(rc)
	require.NoError(t, err)

	var shown []string
	for i := 0; i < len(stream); i++ {
		if stream[i] != '(' {
			continue
		}
		var raw []byte
		for i++; i < len(stream) && stream[i] != ')'; i++ {
			c := stream[i]
			if c == '\\' && i+1 < len(stream) {
				i++
				c = stream[i]
				if c == 'r' {
					c = '\r'
				}
			}
			raw = append(raw, c)
		}
		units := make([]uint16, 0, len(raw)/2)
		for j := 0; j+1 < len(raw); j += 2 {
			units = append(units, uint16(raw[j])<<8|uint16(raw[j+1]))
		}
		shown = append(shown, string(utf16.Decode(units)))
	}
	return shown
}

func TestRender_KeepsNonLatinText(t *testing.T) {
	md := "# Big-O\n\nO(n) → O(log n), α ≤ β, Привет, 日本語\n\n| x | y |\n|---|---|\n| ∑ | ∞ |\n\n```\nλ → μ\n```\n"
	out, err := nativeRenderer(t).Render(md)
	require.NoError(t, err)

	shown := strings.Join(drawnText(t, out), " ")
	for _, want := range []string{"Big-O", "→", "O(log", "α", "≤", "β,", "Привет,", "日本語", "∑", "∞", "λ → μ"} {
		assert.Contains(t, shown, want)
	}
	assert.NotContains(t, shown, "O(n).", "characters must not be replaced")

	text, err := extract.ExtractBytes(out)
	require.NoError(t, err)
	assert.Contains(t, text, "Big-O")
}

func TestPDFText(t *testing.T) {
	assert.Equal(t, "α ≤ β 日本語", pdfText("α ≤ β 日本語"))
	assert.Equal(t, "smile \uFFFD", pdfText("smile 🙂"))
	assert.Equal(t, "ab", pdfText("a\x00b"))
}

func TestRender_PaginatesLongDocuments(t *testing.T) {
	var md strings.Builder
	md.WriteString("# Long\n\n| Term | Meaning |\n|---|---|\n")
	for i := range 120 {
		fmt.Fprintf(&md, "| term %d | meaning number %d with some words |\n", i, i)
	}
	md.WriteString("\n```\n")
	for i := range 100 {
		fmt.Fprintf(&md, "line %d\n", i)
	}
	md.WriteString("```\n")

	out, err := nativeRenderer(t).Render(md.String())
	require.NoError(t, err)

	api.DisableConfigDir()
	pages, err := api.PageCount(bytes.NewReader(out), model.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Greater(t, pages, 2)
}

func TestRender_TooLarge(t *testing.T) {
	engine := &fakeEngine{out: []byte("%PDF-1.4")}
	r := New(engine, WithMaxBytes(16))

	out, err := r.Render(strings.Repeat("a", 17))
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrTooLarge)
	require.ErrorIs(t, err, ErrRender)
	assert.Zero(t, engine.calls)

	_, err = r.Render(strings.Repeat("a", 16))
	assert.NoError(t, err)
}

func TestRender_EngineFailures(t *testing.T) {
	tests := []struct {
		name   string
		engine *fakeEngine
	}{
		{name: "engine error", engine: &fakeEngine{out: []byte("%PDF-partial"), err: errors.New("wkhtmltopdf crashed")}},
		{name: "engine panic", engine: &fakeEngine{panicWith: "layout overflow"}},
		{name: "not a pdf", engine: &fakeEngine{out: []byte("<html>")}},
		{name: "empty output", engine: &fakeEngine{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(tt.engine).Render(tableDoc)
			assert.Nil(t, out)
			require.ErrorIs(t, err, ErrRender)

			var rerr *Error
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, "engine", rerr.Stage)
		})
	}
}

func TestRender_EngineReceivesStyledDocument(t *testing.T) {
	engine := &fakeEngine{out: []byte("%PDF-1.4")}
	_, err := New(engine).Render(tableDoc)
	require.NoError(t, err)

	doc := parseHTML(t, engine.html)
	assert.Equal(t, 1, doc.Find("body table").Length())
	assert.Contains(t, doc.Find("style").Text(), "#2E86C1")
}

func TestRender_ValidatedOutput(t *testing.T) {
	out, err := nativeRenderer(t, WithValidation(true)).Render(tableDoc + "\n- item\n\n```\ncode\n```\n")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRender_ValidationRejectsBrokenPDF(t *testing.T) {
	engine := &fakeEngine{out: []byte("%PDF-1.4\nnot really a pdf")}
	out, err := New(engine, WithValidation(true)).Render("x")
	assert.Nil(t, out)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "validate", rerr.Stage)
}

// --- engines ---

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(types.RenderConfig{Engine: types.EngineNative, PageSize: "letter"})
	require.NoError(t, err)
	assert.Equal(t, "Letter", e.(*NativeEngine).pageSize)

	_, err = NewEngine(types.RenderConfig{Engine: "prince"})
	assert.ErrorIs(t, err, ErrUnknownEngine)

	_, err = NewNativeEngine("tabloid")
	assert.Error(t, err)
}

func TestContainerEngine(t *testing.T) {
	rt := &fakeRuntime{images: map[string]bool{"wk:1": true}}

	_, err := NewContainerEngine(rt, "missing:1")
	require.Error(t, err)

	e, err := NewContainerEngine(rt, "wk:1")
	require.NoError(t, err)
	out, err := New(e).Render(tableDoc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(out))
	assert.Contains(t, rt.args, "--disable-local-file-access")
	assert.Contains(t, rt.stdin, "<table>")

	rt.err = errors.New("exit status 1")
	out, err = New(e).Render(tableDoc)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrRender)
}

// --- fakes ---

type fakeEngine struct {
	out       []byte
	err       error
	panicWith string
	calls     int
	html      string
}

func (f *fakeEngine) PDF(html string) ([]byte, error) {
	f.calls++
	f.html = html
	if f.panicWith != "" {
		panic(f.panicWith)
	}
	return f.out, f.err
}

type fakeRuntime struct {
	images map[string]bool
	err    error
	args   []string
	stdin  string
}

func (f *fakeRuntime) Name() string    { return "fake" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error {
	if !f.images[image] {
		return fmt.Errorf("image %s not found", image)
	}
	return nil
}

func (f *fakeRuntime) Run(_ string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.args = args
	data, _ := io.ReadAll(stdin)
	f.stdin = string(data)
	if f.err != nil {
		return f.err
	}
	_, err := stdout.Write([]byte("%PDF-1.4 fake"))
	return err
}
