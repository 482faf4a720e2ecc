// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input turns user-supplied notes into plain text for the
// generator. Notes arrive as pasted text or as a PDF, plain text,
// Markdown, or HTML file. Content type is sniffed from the bytes and the
// file extension is only a fallback.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pdiddy/cheatsheet/pkg/types"
)

// ErrTooLarge is returned when the input exceeds the byte limit.
var ErrTooLarge = errors.New("input exceeds size limit")

const mimeOctetStream = "application/octet-stream"

// Document is loaded notes with their provenance.
type Document struct {
	Text     string
	Source   string // file path, "-" for stdin, or "text"
	MIMEType string
}

// UnsupportedError is returned for content that is not PDF, HTML, or text.
type UnsupportedError struct {
	Source   string
	MIMEType string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported input %s (mime=%q)", e.Source, e.MIMEType)
}

// noteConverter turns raw bytes of one content family into text.
type noteConverter interface {
	accepts(mime string) bool
	convert(data []byte, source string) (string, error)
}

// converters are tried in order; the first that accepts the MIME type wins.
var converters = []noteConverter{
	pdfConverter{},
	htmlConverter{},
	textConverter{},
}

// FromText wraps pasted text. It is used verbatim.
func FromText(s string) Document {
	return Document{Text: s, Source: "text", MIMEType: "text/plain"}
}

// Load reads the file at path. maxBytes <= 0 means
// types.DefaultMaxInputBytes.
func Load(path string, maxBytes int64) (Document, error) {
	maxBytes = limit(maxBytes)
	if info, err := os.Stat(path); err == nil && info.Size() > maxBytes {
		return Document{}, fmt.Errorf("%s: %w (%d > %d bytes)", path, ErrTooLarge, info.Size(), maxBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()
	return Read(f, path, maxBytes)
}

// Read consumes r, which is named name for type detection and error
// messages. maxBytes <= 0 means types.DefaultMaxInputBytes.
func Read(r io.Reader, name string, maxBytes int64) (Document, error) {
	maxBytes = limit(maxBytes)
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > maxBytes {
		return Document{}, fmt.Errorf("%s: %w (more than %d bytes)", name, ErrTooLarge, maxBytes)
	}

	mime := detectMIME(data, filepath.Ext(name))
	for _, c := range converters {
		if !c.accepts(mime) {
			continue
		}
		text, err := c.convert(data, name)
		if err != nil {
			return Document{}, err
		}
		return Document{Text: text, Source: name, MIMEType: mime}, nil
	}
	return Document{}, &UnsupportedError{Source: name, MIMEType: mime}
}

func limit(maxBytes int64) int64 {
	if maxBytes <= 0 {
		return types.DefaultMaxInputBytes
	}
	return maxBytes
}

// detectMIME returns the sniffed MIME type without parameters, falling
// back to the extension when the content is not recognised.
func detectMIME(data []byte, ext string) string {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/pdf"):
			return "application/pdf"
		case m.Is("text/html"):
			return "text/html"
		}
	}
	if base, _, _ := strings.Cut(mt.String(), ";"); base != mimeOctetStream {
		return base
	}
	return mimeFromExtension(ext)
}

func mimeFromExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".html", ".htm", ".xhtml":
		return "text/html"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".text":
		return "text/plain"
	}
	return mimeOctetStream
}

// isText reports whether mime is a textual type notes can be read from.
func isText(mime string) bool {
	if strings.HasPrefix(mime, "text/") {
		return true
	}
	switch mime {
	case "application/json", "application/x-ndjson", "application/xml":
		return true
	}
	return false
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}
