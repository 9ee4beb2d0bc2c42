package assets

import (
	_ "embed"
	"fmt"
	"io"
)

const studySheetTemplateName = "study-sheet.md.go.tmpl"

//go:embed templates/study-sheet.md.go.tmpl
var fallbackStudySheetTemplate string

// StudySheetTemplate is the data of a printable study sheet.
type StudySheetTemplate struct {
	Title   string
	Sources []string
	Cards   []StudySheetCard
}

type StudySheetCard struct {
	Question string
	Answer   string
}

// WriteStudySheet renders the study sheet as markdown. A templatePath that
// can't be read or parsed falls back to the embedded template.
func WriteStudySheet(output io.Writer, templatePath string, templateData StudySheetTemplate) error {
	tmpl, err := parseTemplateWithFallback(templatePath, studySheetTemplateName, fallbackStudySheetTemplate)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, templateData); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
