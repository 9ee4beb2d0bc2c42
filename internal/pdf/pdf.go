// Package pdf renders markdown study sheets as PDF files.
package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

// ConvertMarkdownToPDF writes a PDF next to the markdown file and returns its path.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if filepath.Ext(markdownPath) != ".md" {
		return "", apperr.Configuration("pdf.ConvertMarkdownToPDF", fmt.Errorf("input file must have .md extension: %s", markdownPath))
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", apperr.IO("pdf.ConvertMarkdownToPDF", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err))
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", apperr.IO("pdf.ConvertMarkdownToPDF", fmt.Errorf("renderer.Process() > %w", err))
	}
	slog.Debug("Converted markdown to PDF", "markdown", markdownPath, "pdf", pdfPath)

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}
