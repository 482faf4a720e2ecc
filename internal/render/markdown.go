// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdown parses GFM tables and strikethrough on top of CommonMark
// (which already covers fenced code). The HTML renderer keeps its safe
// default: raw HTML in the source is omitted.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// MarkdownToHTML converts Markdown to an HTML fragment. Tables become
// <table> with a <thead> row of <th>; fenced code becomes <pre><code>
// with its content escaped but otherwise untouched.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Stylesheet is embedded in every rendered document.
const Stylesheet = `body { font-family: Helvetica, sans-serif; font-size: 12pt; }
h1 { color: #2E86C1; border-bottom: 2px solid #2E86C1; }
h2 { color: #1B4F72; margin-top: 20px; }
h3 { color: #1B4F72; }
code { background-color: #f4f4f4; padding: 2px; border-radius: 3px; font-family: Courier, monospace; }
pre { background-color: #f4f4f4; padding: 10px; border: 1px solid #ddd; }
table { width: 100%; border-collapse: collapse; margin: 15px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }`

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Cheatsheet</title>
<style>
{{.Stylesheet}}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Document wraps an HTML fragment in the fixed cheatsheet document.
func Document(fragment string) (string, error) {
	var buf bytes.Buffer
	err := documentTmpl.Execute(&buf, struct {
		Stylesheet template.CSS
		Body       template.HTML
	}{
		Stylesheet: template.CSS(Stylesheet),
		Body:       template.HTML(fragment),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
