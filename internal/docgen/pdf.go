// Package docgen renders generated text as a paginated PDF document for
// download. It has no contract beyond rendering all provided lines,
// wrapping and paginating as needed.
package docgen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Renderer produces PDF documents from plain text.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns the PDF bytes for the given title and multi-line text.
func (r *Renderer) Render(title, text string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.MultiCell(0, 10, title, "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "", 12)
	for _, line := range strings.Split(text, "\n") {
		pdf.MultiCell(0, 10, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
