// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disablePDFCPUConfig sync.Once

// validatePDF parses data with pdfcpu in relaxed mode. pdfcpu would
// otherwise create a config directory under the user's home on first use.
func validatePDF(data []byte) error {
	disablePDFCPUConfig.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.Validate(bytes.NewReader(data), conf)
}
