// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/pdiddy/cheatsheet/internal/extract"
)

func onePagePDF(t *testing.T, text string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(80, 10, text)
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestFromText(t *testing.T) {
	doc := FromText("  raw notes\n")
	assert.Equal(t, "  raw notes\n", doc.Text)
	assert.Equal(t, "text", doc.Source)
}

func TestRead(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(
		"Le café est très chaud. La crème brûlée est délicieuse, mais le thé à la française " +
			"reste préféré. Où est la bibliothèque? Les élèves étudient après l'école.")
	require.NoError(t, err)
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("Photosynthesis: light → sugar")
	require.NoError(t, err)

	tests := []struct {
		name     string
		file     string
		data     []byte
		wantMIME string
		want     string // exact text; empty means check contains instead
		contains []string
		missing  []string
	}{
		{
			name:     "markdown passes through untouched",
			file:     "notes.md",
			data:     []byte("# Cells  \n\n- *nucleus*\t\n"),
			wantMIME: "text/plain",
			want:     "# Cells  \n\n- *nucleus*\t\n",
		},
		{
			name:     "utf8 bom stripped",
			file:     "notes.txt",
			data:     append([]byte{0xEF, 0xBB, 0xBF}, "ATP"...),
			wantMIME: "text/plain",
			want:     "ATP",
		},
		{
			name:     "latin1 decoded",
			file:     "notes.txt",
			data:     []byte(latin1),
			wantMIME: "text/plain",
			contains: []string{"café", "crème brûlée"},
		},
		{
			name:     "utf16 decoded",
			file:     "notes.txt",
			data:     []byte(utf16),
			wantMIME: "text/plain",
			want:     "Photosynthesis: light → sugar",
		},
		{
			name: "html converted to markdown",
			file: "page.html",
			data: []byte(`<!DOCTYPE html><html><head><style>h1{color:red}</style><script>track()</script></head>` +
				`<body><h1>Krebs cycle</h1><p>Produces <strong>ATP</strong>.</p>` +
				`<table><thead><tr><th>Step</th><th>Output</th></tr></thead><tbody><tr><td>1</td><td>NADH</td></tr></tbody></table></body></html>`),
			wantMIME: "text/html",
			contains: []string{"# Krebs cycle", "**ATP**", "| Step | Output |", "NADH"},
			missing:  []string{"track()", "color:red"},
		},
		{
			name:     "pdf extracted",
			file:     "lecture.pdf",
			data:     onePagePDF(t, "Mitochondria"),
			wantMIME: "application/pdf",
			want:     "Mitochondria",
		},
		{
			name:     "pdf sniffed despite extension",
			file:     "lecture.txt",
			data:     onePagePDF(t, "Ribosome"),
			wantMIME: "application/pdf",
			want:     "Ribosome",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Read(bytes.NewReader(tt.data), tt.file, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, doc.MIMEType)
			assert.Equal(t, tt.file, doc.Source)
			if tt.want != "" {
				assert.Equal(t, tt.want, doc.Text)
			}
			for _, s := range tt.contains {
				assert.Contains(t, doc.Text, s)
			}
			for _, s := range tt.missing {
				assert.NotContains(t, doc.Text, s)
			}
		})
	}
}

func TestRead_Errors(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	_, err := Read(bytes.NewReader(png), "diagram.png", 0)
	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "image/png", unsupported.MIMEType)
	assert.Contains(t, err.Error(), "diagram.png")

	_, err = Read(bytes.NewReader([]byte("%PDF-1.7\n%garbage that is not a pdf")), "broken.pdf", 0)
	require.ErrorIs(t, err, extract.ErrUnreadablePDF)
	assert.Contains(t, err.Error(), "broken.pdf")

	_, err = Read(strings.NewReader(strings.Repeat("a", 11)), "big.txt", 10)
	require.ErrorIs(t, err, ErrTooLarge)

	doc, err := Read(strings.NewReader(strings.Repeat("a", 10)), "exact.txt", 10)
	require.NoError(t, err)
	assert.Len(t, doc.Text, 10)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("## Enzymes\n"), 0o644))

	doc, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "## Enzymes\n", doc.Text)
	assert.Equal(t, path, doc.Source)

	_, err = Load(path, 4)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Load(filepath.Join(dir, "missing.md"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDetectMIME_ExtensionFallback(t *testing.T) {
	binaryish := []byte{0x00, 0x01, 0x02, 0xfe}
	assert.Equal(t, "text/markdown", detectMIME(binaryish, ".MD"))
	assert.Equal(t, "text/html", detectMIME(binaryish, ".htm"))
	assert.Equal(t, mimeOctetStream, detectMIME(binaryish, ".bin"))
}
