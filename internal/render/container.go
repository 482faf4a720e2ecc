// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"strings"

	"github.com/pdiddy/cheatsheet/internal/container"
)

// wkhtmltopdfArgs read HTML from stdin and write PDF to stdout. Local file
// access is denied; the container itself has no network.
var wkhtmltopdfArgs = []string{
	"--quiet",
	"--encoding", "utf-8",
	"--disable-local-file-access",
	"--disable-javascript",
	"-", "-",
}

// ContainerEngine renders with wkhtmltopdf inside a container image.
type ContainerEngine struct {
	runtime container.Runtime
	image   string
}

// NewContainerEngine checks that image is present in rt.
func NewContainerEngine(rt container.Runtime, image string) (*ContainerEngine, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, err
	}
	return &ContainerEngine{runtime: rt, image: image}, nil
}

// PDF pipes doc through the container.
func (e *ContainerEngine) PDF(doc string) ([]byte, error) {
	var out bytes.Buffer
	if err := e.runtime.Run(e.image, wkhtmltopdfArgs, strings.NewReader(doc), &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
