// Package surface renders score and validation results for different output
// targets: terminal and JSON.
package surface

import (
	"io"

	"github.com/enviroscope/enviroscope/pkg/scoring"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

// Renderer produces formatted output from computed results.
type Renderer interface {
	// RenderScore writes the formatted score result to the writer.
	RenderScore(w io.Writer, result *scoring.Result) error
	// RenderReport writes the formatted validation report to the writer.
	RenderReport(w io.Writer, report *validation.Report) error
}
