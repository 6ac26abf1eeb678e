package services

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRejectsUnsupportedContentType(t *testing.T) {
	extractor := NewTextExtractor()

	_, err := extractor.Extract("/tmp/whatever.txt", "text/plain")
	require.Error(t, err)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Contains(t, extErr.Reason, "unsupported content type")
}

func TestExtractMissingFiles(t *testing.T) {
	extractor := NewTextExtractor()
	missing := filepath.Join(t.TempDir(), "missing")

	t.Run("pdf", func(t *testing.T) {
		_, err := extractor.Extract(missing+".pdf", MIMETypePDF)
		var extErr *ExtractionError
		require.ErrorAs(t, err, &extErr)
	})

	t.Run("docx", func(t *testing.T) {
		_, err := extractor.Extract(missing+".docx", MIMETypeDOCX)
		var extErr *ExtractionError
		require.ErrorAs(t, err, &extErr)
	})

	t.Run("doc falls back to placeholder", func(t *testing.T) {
		text, err := extractor.Extract(missing+".doc", MIMETypeDOC)
		require.NoError(t, err)
		assert.Equal(t, docPlaceholderText, text)
	})
}

func TestInspectContent(t *testing.T) {
	extractor := NewTextExtractor()

	t.Run("typical cv passes", func(t *testing.T) {
		text := "Work Experience\nBackend developer for five years.\n" +
			"Education\nBSc Computer Science.\nSkills\nGo, Postgres."
		inspection := extractor.InspectContent(text)

		assert.True(t, inspection.Valid)
		assert.Empty(t, inspection.Issues)
		assert.Contains(t, inspection.FoundSections, "experience")
		assert.Contains(t, inspection.FoundSections, "education")
		assert.Contains(t, inspection.FoundSections, "skills")
	})

	t.Run("short text flagged", func(t *testing.T) {
		inspection := extractor.InspectContent("too short")

		assert.False(t, inspection.Valid)
		assert.Contains(t, inspection.Issues, "text seems too short for a CV")
	})

	t.Run("non-cv text flagged", func(t *testing.T) {
		inspection := extractor.InspectContent(strings.Repeat("lorem ipsum dolor sit amet ", 10))

		assert.False(t, inspection.Valid)
		assert.Contains(t, inspection.Issues, "document doesn't appear to contain typical CV sections")
	})

	t.Run("oversized text flagged", func(t *testing.T) {
		inspection := extractor.InspectContent(strings.Repeat("experience education skills ", 2500))

		assert.False(t, inspection.Valid)
		assert.Contains(t, inspection.Issues, "text seems too long for a CV")
	})
}

func TestCleanText(t *testing.T) {
	input := "  First line  \n\n   \n\tSecond line\n\n"
	assert.Equal(t, "First line\nSecond line", CleanText(input))
}
