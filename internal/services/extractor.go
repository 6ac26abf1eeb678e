package services

import (
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// docPlaceholderText is returned for legacy .doc files when no real
// extraction is possible. Callers tolerate the low-fidelity result.
const docPlaceholderText = "DOC file content extracted (limited processing available)"

// cvSectionMarkers are lexical markers a typical CV contains. Used only for
// the non-blocking content quality check.
var cvSectionMarkers = []string{"experience", "education", "skills", "work", "job", "employment"}

type ContentInspection struct {
	Valid         bool
	Issues        []string
	TextLength    int
	FoundSections []string
}

type TextExtractor interface {
	Extract(filePath, contentType string) (string, error)
	InspectContent(text string) ContentInspection
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// Extract dispatches on the declared content type. Unsupported types fail
// immediately; extraction panics are converted to an ExtractionError rather
// than crashing the request.
func (t *textExtractor) Extract(filePath, contentType string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Reason: "document parser panicked", Err: fmt.Errorf("%v", r)}
		}
	}()

	switch contentType {
	case MIMETypePDF:
		return t.extractPDF(filePath)
	case MIMETypeDOCX:
		return t.extractDOCX(filePath)
	case MIMETypeDOC:
		return t.extractDOC(filePath)
	default:
		return "", &ExtractionError{Reason: fmt.Sprintf("unsupported content type: %s", contentType)}
	}
}

// extractPDF concatenates per-page text with newline separators, skipping
// pages that yield no text.
func (t *textExtractor) extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", &ExtractionError{Reason: "failed to open PDF", Err: err}
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPages := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", &ExtractionError{Reason: "no text content found in PDF"}
	}

	return text, nil
}

func (t *textExtractor) extractDOCX(filePath string) (string, error) {
	res, err := docconv.ConvertPath(filePath)
	if err != nil {
		return "", &ExtractionError{Reason: "failed to parse DOCX", Err: err}
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", &ExtractionError{Reason: "no text content found in DOCX"}
	}

	return text, nil
}

// extractDOC is best effort. Legacy DOC parsing is unreliable, so a failed
// conversion yields a fixed placeholder instead of an error.
func (t *textExtractor) extractDOC(filePath string) (string, error) {
	res, err := docconv.ConvertPath(filePath)
	if err != nil || strings.TrimSpace(res.Body) == "" {
		return docPlaceholderText, nil
	}

	return strings.TrimSpace(res.Body), nil
}

// InspectContent flags extracted text that does not look like a CV. The
// result is a quality heuristic, not a blocking check.
func (t *textExtractor) InspectContent(text string) ContentInspection {
	inspection := ContentInspection{TextLength: len(text)}

	if len(text) < 50 {
		inspection.Issues = append(inspection.Issues, "text seems too short for a CV")
	}
	if len(text) > 50000 {
		inspection.Issues = append(inspection.Issues, "text seems too long for a CV")
	}

	textLower := strings.ToLower(text)
	for _, marker := range cvSectionMarkers {
		if strings.Contains(textLower, marker) {
			inspection.FoundSections = append(inspection.FoundSections, marker)
		}
	}
	if len(inspection.FoundSections) < 2 {
		inspection.Issues = append(inspection.Issues, "document doesn't appear to contain typical CV sections")
	}

	inspection.Valid = len(inspection.Issues) == 0
	return inspection
}

// CleanText collapses whitespace-only lines from extracted text.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
