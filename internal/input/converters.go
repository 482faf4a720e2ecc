// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/pdiddy/cheatsheet/internal/extract"
)

// pdfConverter extracts page text.
type pdfConverter struct{}

func (pdfConverter) accepts(mime string) bool { return mime == "application/pdf" }

func (pdfConverter) convert(data []byte, source string) (string, error) {
	text, err := extract.ExtractBytes(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", source, err)
	}
	return text, nil
}

// htmlConverter turns saved web pages into Markdown so headings, lists
// and tables reach the model with their structure.
type htmlConverter struct{}

func (htmlConverter) accepts(mime string) bool {
	return mime == "text/html" || mime == "application/xhtml+xml"
}

var (
	reScript = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyle  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
)

var htmlToMarkdown = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(
			commonmark.WithHeadingStyle("atx"),
		),
		table.NewTablePlugin(),
	),
)

func (htmlConverter) convert(data []byte, source string) (string, error) {
	doc := decodeText(data)
	doc = reScript.ReplaceAllString(doc, "")
	doc = reStyle.ReplaceAllString(doc, "")

	md, err := htmlToMarkdown.ConvertString(doc)
	if err != nil {
		return "", fmt.Errorf("converting %s to markdown: %w", source, err)
	}
	return strings.TrimSpace(md), nil
}

// textConverter reads plain text and Markdown in any detectable charset.
type textConverter struct{}

func (textConverter) accepts(mime string) bool { return isText(mime) }

func (textConverter) convert(data []byte, _ string) (string, error) {
	return decodeText(data), nil
}

// decodeText returns data as UTF-8. Valid UTF-8 is returned unchanged
// apart from a leading byte order mark; anything else is decoded with
// the charset chardet considers most likely.
func decodeText(data []byte) string {
	data = trimBOM(data)
	if utf8.Valid(data) {
		return string(data)
	}

	res, err := chardet.NewTextDetector().DetectBest(data)
	if err == nil {
		if enc, err := htmlindex.Get(res.Charset); err == nil {
			if out, err := enc.NewDecoder().Bytes(data); err == nil {
				return strings.TrimPrefix(string(out), "\uFEFF")
			}
		}
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}
