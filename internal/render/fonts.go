// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Embedded font families. Both are TrueType fonts written through
// gofpdf's UTF-8 path, so text is never forced into a single-byte code
// page.
const (
	familySans = "GoSans"
	familyMono = "GoMono"
)

// faces holds the TrueType data per family and gofpdf style ("", "B",
// "I", "BI").
var faces = map[string]map[string][]byte{
	familySans: {
		"":   goregular.TTF,
		"B":  gobold.TTF,
		"I":  goitalic.TTF,
		"BI": gobolditalic.TTF,
	},
	familyMono: {
		"":   gomono.TTF,
		"B":  gomonobold.TTF,
		"I":  gomonoitalic.TTF,
		"BI": gomonobolditalic.TTF,
	},
}

// faceKey drops the underline flag, which gofpdf draws itself.
func faceKey(fontStyle string) string {
	return strings.ReplaceAll(fontStyle, "U", "")
}

// useFace registers family/style with the document on first use. Only
// faces that are actually drawn get embedded.
func (l *layout) useFace(family, fontStyle string) {
	key := family + "/" + faceKey(fontStyle)
	if l.loaded[key] {
		return
	}
	l.loaded[key] = true
	data, ok := faces[family][faceKey(fontStyle)]
	if !ok {
		return
	}
	l.pdf.AddUTF8FontFromBytes(family, faceKey(fontStyle), data)
}

// pdfText prepares text for the UTF-8 font path. gofpdf encodes text as
// UTF-16 code units of the Basic Multilingual Plane only, so runes
// outside it become U+FFFD. Characters the font has no glyph for keep
// their code point and still extract and copy correctly.
func pdfText(s string) string {
	ok := true
	for _, r := range s {
		if r > 0xFFFF || r == 0 {
			ok = false
			break
		}
	}
	if ok {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == 0:
			return -1
		case r > 0xFFFF:
			return '\uFFFD'
		}
		return r
	}, s)
}
