// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
)

const (
	pageMargin      = 42.0 // points, about 15mm
	listIndent      = 18.0
	quoteIndent     = 14.0
	minBlockWidth   = 72.0
	maxNestingDepth = 48
)

// creationDate is stamped into every document as both creation and
// modification date so identical input yields identical bytes.
var creationDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

var pageSizes = map[string]string{
	"a3":     "A3",
	"a4":     "A4",
	"a5":     "A5",
	"letter": "Letter",
	"legal":  "Legal",
}

// NativeEngine lays HTML out directly with gofpdf. It understands the
// block and inline elements Markdown produces (headings, paragraphs,
// lists, tables, code blocks, quotes, rules, emphasis, links) and the
// type-selector rules of the document's <style> elements. Output is
// deterministic.
type NativeEngine struct {
	pageSize string
}

// NewNativeEngine returns an engine producing pages of the given size
// (A3, A4, A5, Letter or Legal; empty means A4).
func NewNativeEngine(pageSize string) (*NativeEngine, error) {
	if pageSize == "" {
		pageSize = "A4"
	}
	size, ok := pageSizes[strings.ToLower(pageSize)]
	if !ok {
		return nil, fmt.Errorf("unsupported page size %q", pageSize)
	}
	return &NativeEngine{pageSize: size}, nil
}

// PDF lays out doc and returns the PDF bytes.
func (e *NativeEngine) PDF(doc string) ([]byte, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var css strings.Builder
	for _, n := range findAll(root, "style") {
		css.WriteString(textContent(n))
		css.WriteByte('\n')
	}

	pdf := gofpdf.New("P", "pt", e.pageSize, "")
	pdf.SetCreationDate(creationDate)
	pdf.SetModificationDate(creationDate)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetCellMargin(0)
	if title := findAll(root, "h1"); len(title) > 0 {
		pdf.SetTitle(strings.TrimSpace(textContent(title[0])), true)
	}
	pdf.AddPage()

	l := newLayout(pdf, parseStylesheet(css.String()))
	body := root
	if b := findAll(root, "body"); len(b) > 0 {
		body = b[0]
	}
	base := l.sheet.compute(body, rootStyle)
	l.blocks(body, base, l.left, l.width, 0)

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// layout tracks the write position while walking the document.
type layout struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	sheet  stylesheet
	loaded map[string]bool

	left, width float64
	top, bottom float64
	y           float64
	listLevel   int
}

func newLayout(pdf *gofpdf.Fpdf, sheet stylesheet) *layout {
	w, h := pdf.GetPageSize()
	return &layout{
		pdf:    pdf,
		tr:     pdfText,
		sheet:  sheet,
		loaded: map[string]bool{},
		left:   pageMargin,
		width:  w - 2*pageMargin,
		top:    pageMargin,
		bottom: h - pageMargin,
		y:      pageMargin,
	}
}

func (l *layout) atTop() bool { return l.y <= l.top+0.01 }

func (l *layout) newPage() {
	l.pdf.AddPage()
	l.y = l.top
}

// ensure starts a new page unless h more points fit on this one. A block
// taller than a page is placed at the top and allowed to overflow.
func (l *layout) ensure(h float64) {
	if l.y+h > l.bottom && !l.atTop() {
		l.newPage()
	}
}

func (l *layout) space(h float64) {
	if h <= 0 || l.atTop() {
		return
	}
	l.y += h
	if l.y > l.bottom {
		l.newPage()
	}
}

func (l *layout) setFont(st style) {
	l.useFace(st.family, st.fontStyle())
	l.pdf.SetFont(st.family, st.fontStyle(), st.size)
	l.pdf.SetTextColor(st.color.r, st.color.g, st.color.b)
}

func indent(x, w, by float64) (float64, float64) {
	if w-by < minBlockWidth {
		return x, w
	}
	return x + by, w - by
}

// --- block layout ---

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "details": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "summary": true,
	"table": true, "ul": true,
}

// blocks lays out the children of parent. Runs of inline content between
// block children form anonymous paragraphs.
func (l *layout) blocks(parent *html.Node, st style, x, w float64, depth int) {
	var inline []run
	flush := func() {
		if visible(inline) {
			l.paragraph(inline, st, x, w)
		}
		inline = nil
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.Data] {
			flush()
			l.block(c, st, x, w, depth+1)
			continue
		}
		inline = l.runs(c, st, inline, depth+1)
	}
	flush()
}

func (l *layout) block(n *html.Node, parent style, x, w float64, depth int) {
	if depth > maxNestingDepth {
		l.paragraph([]run{{text: textContent(n), st: parent}}, parent, x, w)
		return
	}

	st := l.sheet.compute(n, parent)
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		l.heading(n, st, x, w, depth)
	case "p", "dt", "figcaption", "summary":
		l.space(st.marginTop)
		l.paragraph(l.childRuns(n, st, depth), st, x, w)
		l.space(st.marginBottom)
	case "ul", "ol":
		l.list(n, st, x, w, depth)
	case "pre":
		l.pre(n, st, x, w)
	case "table":
		l.table(n, st, x, w, depth)
	case "blockquote", "dd":
		l.space(st.marginTop)
		ix, iw := indent(x, w, quoteIndent)
		l.blocks(n, st, ix, iw, depth)
		l.space(st.marginBottom)
	case "hr":
		l.space(6)
		l.pdf.SetDrawColor(ruleGray.r, ruleGray.g, ruleGray.b)
		l.pdf.SetLineWidth(0.75)
		l.pdf.Line(x, l.y, x+w, l.y)
		l.space(6)
	default:
		l.space(st.marginTop)
		l.blocks(n, st, x, w, depth)
		l.space(st.marginBottom)
	}
}

func (l *layout) paragraph(runs []run, st style, x, w float64) {
	for _, ln := range l.lines(runs, w, st) {
		l.ensure(ln.height)
		l.drawLine(ln, x, l.y, w, st.align)
		l.y += ln.height
	}
}

func (l *layout) heading(n *html.Node, st style, x, w float64, depth int) {
	lines := l.lines(l.childRuns(n, st, depth), w, st)
	if len(lines) == 0 {
		return
	}
	total := 0.0
	for _, ln := range lines {
		total += ln.height
	}

	l.space(st.marginTop)
	// Keep the heading on the same page as the first line that follows it.
	l.ensure(total + st.lineHeight())
	for _, ln := range lines {
		l.drawLine(ln, x, l.y, w, st.align)
		l.y += ln.height
	}
	if b := st.borderBottom; b.visible() {
		l.y += 1
		l.pdf.SetDrawColor(b.color.r, b.color.g, b.color.b)
		l.pdf.SetLineWidth(b.width)
		l.pdf.Line(x, l.y, x+w, l.y)
		l.y += b.width + 1
	}
	l.space(st.marginBottom)
}

func (l *layout) list(n *html.Node, st style, x, w float64, depth int) {
	ordered := n.Data == "ol"
	num := 1
	if start, err := strconv.Atoi(attr(n, "start")); err == nil && ordered {
		num = start
	}

	if l.listLevel == 0 {
		l.space(st.marginTop)
	}
	cx, cw := indent(x, w, listIndent)
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		ist := l.sheet.compute(li, st)

		marker := "•"
		switch {
		case ordered:
			marker = strconv.Itoa(num) + "."
			num++
		case l.listLevel > 0:
			marker = "-"
		}

		lh := ist.lineHeight()
		l.ensure(lh)
		if mw := cx - x - 4; mw > 0 {
			l.setFont(ist)
			l.pdf.SetXY(x, l.y)
			l.pdf.CellFormat(mw, lh, l.tr(marker), "", 0, "R", false, 0, "")
		}

		page, y := l.pdf.PageNo(), l.y
		l.listLevel++
		l.blocks(li, ist, cx, cw, depth+1)
		l.listLevel--
		if l.pdf.PageNo() == page && l.y == y {
			l.y += lh
		}
	}
	if l.listLevel == 0 {
		l.space(st.marginBottom)
	}
}

// pre draws preformatted text line by line, keeping every space and
// breaking only lines wider than the block. The background is filled per
// row and the border is drawn around each page's segment.
func (l *layout) pre(n *html.Node, st style, x, w float64) {
	text := strings.ReplaceAll(textContent(n), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	text = strings.ReplaceAll(text, "\t", "    ")

	pad := st.padding
	inner := w - 2*pad
	if inner < minBlockWidth/2 {
		pad, inner = 0, w
	}

	l.space(st.marginTop)
	l.setFont(st)
	lh := st.lineHeight()
	var rows []string
	for _, src := range strings.Split(text, "\n") {
		rows = append(rows, l.wrapChars(l.tr(src), inner)...)
	}

	segTop := -1.0
	closeSegment := func(end float64) {
		if b := st.border; b.visible() {
			l.pdf.SetDrawColor(b.color.r, b.color.g, b.color.b)
			l.pdf.SetLineWidth(b.width)
			l.pdf.Rect(x, segTop, w, end-segTop, "D")
		}
	}
	for i, row := range rows {
		rowH := lh
		if i == 0 {
			rowH += pad
		}
		if i == len(rows)-1 {
			rowH += pad
		}
		if l.y+rowH > l.bottom && !l.atTop() {
			if segTop >= 0 {
				closeSegment(l.y)
			}
			l.newPage()
			segTop = -1
		}
		if segTop < 0 {
			segTop = l.y
		}
		textY := l.y
		if i == 0 {
			textY += pad
		}
		if bg := st.background; bg != nil {
			l.pdf.SetFillColor(bg.r, bg.g, bg.b)
			l.pdf.Rect(x, l.y, w, rowH, "F")
		}
		l.setFont(st)
		l.pdf.SetXY(x+pad, textY)
		l.pdf.CellFormat(inner, lh, row, "", 0, "L", false, 0, "")
		l.y += rowH
	}
	if segTop >= 0 {
		closeSegment(l.y)
	}
	l.space(st.marginBottom)
}

// --- tables ---

type tableCell struct {
	lines []line
	st    style
}

type tableRow struct {
	cells  []tableCell
	height float64
	header bool
}

// table gives every column an equal share of the width. Rows never split
// across pages; a header row of <th> cells repeats after a page break.
func (l *layout) table(n *html.Node, st style, x, w float64, depth int) {
	trs := tableRows(n)
	cols := 0
	for _, tr := range trs {
		cols = max(cols, len(tableCells(tr)))
	}
	if cols == 0 {
		return
	}
	colW := w / float64(cols)

	l.space(st.marginTop)
	var header *tableRow
	for i, tr := range trs {
		row := l.tableRow(tr, st, colW, cols, depth)
		if i == 0 && row.header {
			header = &row
		}
		if l.y+row.height > l.bottom && !l.atTop() {
			l.newPage()
			if header != nil && i > 0 {
				l.drawRow(*header, x, colW)
			}
		}
		l.drawRow(row, x, colW)
	}
	l.space(st.marginBottom)
}

func (l *layout) tableRow(tr *html.Node, tableStyle style, colW float64, cols, depth int) tableRow {
	rst := l.sheet.compute(tr, tableStyle)
	cells := tableCells(tr)
	row := tableRow{header: len(cells) > 0}

	for len(cells) < cols {
		cells = append(cells, &html.Node{Type: html.ElementNode, Data: "td"})
	}
	for _, c := range cells {
		cst := l.sheet.compute(c, rst)
		if c.Data != "th" {
			row.header = false
		}
		if colW-2*cst.padding < 6 {
			cst.padding = 0
		}
		lines := l.lines(l.childRuns(c, cst, depth), colW-2*cst.padding, cst)
		h := 2 * cst.padding
		if len(lines) == 0 {
			h += cst.lineHeight()
		}
		for _, ln := range lines {
			h += ln.height
		}
		row.height = max(row.height, h)
		row.cells = append(row.cells, tableCell{lines: lines, st: cst})
	}
	return row
}

func (l *layout) drawRow(row tableRow, x, colW float64) {
	for i, cell := range row.cells {
		cx := x + float64(i)*colW
		if bg := cell.st.background; bg != nil {
			l.pdf.SetFillColor(bg.r, bg.g, bg.b)
			l.pdf.Rect(cx, l.y, colW, row.height, "F")
		}
		if b := cell.st.border; b.visible() {
			l.pdf.SetDrawColor(b.color.r, b.color.g, b.color.b)
			l.pdf.SetLineWidth(b.width)
			l.pdf.Rect(cx, l.y, colW, row.height, "D")
		}
		pad := cell.st.padding
		y := l.y + pad
		for _, ln := range cell.lines {
			l.drawLine(ln, cx+pad, y, colW-2*pad, cell.st.align)
			y += ln.height
		}
	}
	l.y += row.height
}

func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.Data == "tr" {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

func tableCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, c)
		}
	}
	return cells
}

// --- inline layout ---

// run is a stretch of text sharing one style, or a forced line break.
type run struct {
	text string
	st   style
	br   bool
}

// frag is a word (or part of one) placed on a line; x is relative to the
// line start and text has passed through pdfText.
type frag struct {
	x, w float64
	text string
	st   style
}

type line struct {
	frags  []frag
	width  float64
	height float64
}

func (l *layout) childRuns(n *html.Node, st style, depth int) []run {
	var runs []run
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		runs = l.runs(c, st, runs, depth+1)
	}
	return runs
}

// runs flattens an inline subtree into styled runs. Block elements found
// in an inline context (a paragraph inside a table cell) contribute
// their text followed by a space.
func (l *layout) runs(n *html.Node, st style, acc []run, depth int) []run {
	switch n.Type {
	case html.TextNode:
		return append(acc, run{text: n.Data, st: st})
	case html.ElementNode:
	default:
		return acc
	}
	if depth > maxNestingDepth {
		return append(acc, run{text: textContent(n), st: st})
	}

	switch n.Data {
	case "br":
		return append(acc, run{br: true, st: st})
	case "img":
		alt := st
		alt.italic = true
		return append(acc, run{text: attr(n, "alt"), st: alt})
	case "script", "style", "head", "template":
		return acc
	}

	cst := l.sheet.compute(n, st)
	if n.Data == "a" {
		cst.link = attr(n, "href")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		acc = l.runs(c, cst, acc, depth+1)
	}
	if blockTags[n.Data] {
		acc = append(acc, run{text: " ", st: st})
	}
	return acc
}

func visible(runs []run) bool {
	for _, r := range runs {
		if r.br || strings.TrimSpace(r.text) != "" {
			return true
		}
	}
	return false
}

// lines breaks runs into lines no wider than width. Whitespace collapses
// to single spaces between words; a word wider than the line is split.
func (l *layout) lines(runs []run, width float64, base style) []line {
	var (
		out     []line
		cur     line
		x       float64
		pending bool
	)
	flush := func() {
		cur.width = x
		if cur.height == 0 {
			cur.height = base.lineHeight()
		}
		out = append(out, cur)
		cur, x, pending = line{}, 0, false
	}
	place := func(word string, st style) {
		l.setFont(st)
		text := l.tr(word)
		w := l.pdf.GetStringWidth(text)
		gap := 0.0
		if pending && len(cur.frags) > 0 {
			gap = l.pdf.GetStringWidth(" ")
		}
		if len(cur.frags) > 0 && x+gap+w > width {
			flush()
			gap = 0
		}
		for w > width && utf8.RuneCountInString(text) > 1 {
			if len(cur.frags) > 0 {
				flush()
			}
			chunks := l.wrapChars(text, width)
			if len(chunks) == 1 {
				break
			}
			for _, c := range chunks[:len(chunks)-1] {
				cw := l.pdf.GetStringWidth(c)
				cur.frags = append(cur.frags, frag{x: 0, w: cw, text: c, st: st})
				cur.height = st.lineHeight()
				x = cw
				flush()
			}
			text = chunks[len(chunks)-1]
			w = l.pdf.GetStringWidth(text)
		}
		cur.frags = append(cur.frags, frag{x: x + gap, w: w, text: text, st: st})
		cur.height = max(cur.height, st.lineHeight())
		x += gap + w
		pending = false
	}

	for _, r := range runs {
		if r.br {
			flush()
			continue
		}
		var word strings.Builder
		for _, ch := range r.text {
			if unicode.IsSpace(ch) {
				if word.Len() > 0 {
					place(word.String(), r.st)
					word.Reset()
				}
				pending = true
				continue
			}
			word.WriteRune(ch)
		}
		if word.Len() > 0 {
			place(word.String(), r.st)
		}
	}
	if len(cur.frags) > 0 {
		flush()
	}
	return out
}

// wrapChars splits text into chunks no wider than width in the current
// font. Every chunk holds at least one character and no chunk splits a
// multi-byte character.
func (l *layout) wrapChars(text string, width float64) []string {
	if text == "" {
		return []string{""}
	}
	var (
		chunks []string
		start  int
		acc    float64
	)
	for i, r := range text {
		cw := l.pdf.GetStringWidth(string(r))
		if acc+cw > width && i > start {
			chunks = append(chunks, text[start:i])
			start, acc = i, 0
		}
		acc += cw
	}
	return append(chunks, text[start:])
}

func (l *layout) drawLine(ln line, x, y, width float64, align string) {
	off := 0.0
	switch align {
	case "center":
		off = (width - ln.width) / 2
	case "right":
		off = width - ln.width
	}
	off = max(off, 0)
	for _, f := range ln.frags {
		l.setFont(f.st)
		fill := f.st.background != nil
		if fill {
			bg := f.st.background
			l.pdf.SetFillColor(bg.r, bg.g, bg.b)
		}
		l.pdf.SetXY(x+off+f.x, y)
		l.pdf.CellFormat(f.w, ln.height, f.text, "", 0, "L", fill, 0, f.st.link)
	}
}

// --- tree helpers ---

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
