// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls the text layer out of PDF documents.
//
// Text from every page is concatenated in page order with no delimiter.
// A page without extractable text (a scanned image, a null page object, a
// content stream the decoder rejects) contributes an empty string; only a
// document that cannot be parsed as a PDF at all is an error.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadablePDF matches every Error under errors.Is.
var ErrUnreadablePDF = errors.New("unreadable PDF")

// Error reports a document that is not a parseable PDF.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("unreadable PDF: %v", e.Err)
	}
	return fmt.Sprintf("unreadable PDF %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnreadablePDF) match any *Error.
func (e *Error) Is(target error) bool { return target == ErrUnreadablePDF }

// Extract reads the PDF of the given size from r and returns the text of
// all pages.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	return extract(r, size, "")
}

// ExtractBytes is Extract over an in-memory document.
func ExtractBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &Error{Err: errors.New("empty document")}
	}
	return extract(bytes.NewReader(data), int64(len(data)), "")
}

// ExtractFile is Extract over the PDF at path.
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return extract(f, info.Size(), path)
}

func extract(r io.ReaderAt, size int64, source string) (text string, err error) {
	// The PDF library panics on some malformed object graphs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = &Error{Source: source, Err: fmt.Errorf("parser panic: %v", rec)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", &Error{Source: source, Err: err}
	}

	pages := PageTexts(reader)
	return strings.Join(pages, ""), nil
}

// PageTexts returns one entry per page of reader, in page order. Pages
// whose text cannot be decoded yield "".
func PageTexts(reader *pdf.Reader) []string {
	n := reader.NumPage()
	pages := make([]string, n)
	for i := 1; i <= n; i++ {
		pages[i-1] = pageText(reader, i)
	}
	return pages
}

// pageText extracts one page. Font resource names are page-local, so the
// font table is built per page.
func pageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()

	p := reader.Page(num)
	if p.V.IsNull() {
		return ""
	}

	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}

	s, err := p.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return s
}
