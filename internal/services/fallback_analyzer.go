package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"cv-checker/internal/models"
)

const minKeywordLength = 4

// Canned feedback used by the deterministic strategy. Only the scores and
// the keyword partition are computed; everything else must be byte-stable
// across runs.
var (
	fallbackGrammarSuggestions = []string{
		"Consider using more action verbs at the beginning of bullet points",
		"Ensure consistent formatting throughout the document",
		"Use present tense for current roles and past tense for previous positions",
		"Avoid generic phrases like 'responsible for' - be more specific",
	}

	fallbackATSIssues = []string{
		"Some bullet points could be more specific with metrics",
		"Consider adding more industry-specific keywords",
		"Format could be more ATS-friendly",
		"Some sections might not be easily parseable by ATS systems",
	}

	fallbackATSSuggestions = []string{
		"Add quantifiable achievements (e.g., 'Increased performance by 25%')",
		"Include more technical skills relevant to the job",
		"Use standard section headers (Experience, Education, Skills)",
		"Avoid complex formatting and graphics",
	}

	fallbackBulletPoints = []string{
		"Developed and maintained 5+ web applications using React and Node.js, improving user engagement by 30%",
		"Collaborated with 8 cross-functional team members to deliver projects 20% ahead of schedule",
		"Implemented CI/CD pipelines reducing deployment time from 2 hours to 15 minutes",
		"Led technical architecture decisions for 3 major projects, resulting in 40% faster development cycles",
		"Mentored 4 junior developers, improving team productivity by 25%",
	}

	fallbackTechnologies = []string{
		"Review the job description for technologies not yet covered by your CV",
		"Strengthen proficiency in the missing keywords listed above",
	}
)

// FallbackAnalyzer is the deterministic keyword-overlap strategy used when
// the language-model service is unavailable or fails.
type FallbackAnalyzer struct {
	normalizer *Normalizer
}

func NewFallbackAnalyzer() *FallbackAnalyzer {
	return &FallbackAnalyzer{normalizer: NewNormalizer()}
}

func (a *FallbackAnalyzer) Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisReport, error) {
	cvLower := strings.ToLower(cvText)
	keywords := extractKeywords(jobDescription)

	var matched, missing []string
	for _, keyword := range keywords {
		if strings.Contains(cvLower, keyword) {
			matched = append(matched, keyword)
		} else {
			missing = append(missing, keyword)
		}
	}

	keywordScore := int(math.Round(float64(len(matched)) / float64(max(len(keywords), 1)) * 100))
	if keywordScore > 100 {
		keywordScore = 100
	}
	atsScore := max(50, keywordScore-10)
	overallScore := (keywordScore + atsScore) / 2

	report := &models.AnalysisReport{
		GrammarSuggestions: fallbackGrammarSuggestions,
		KeywordMatch: models.KeywordMatch{
			Matched: truncateList(matched, 10),
			Missing: truncateList(missing, 10),
			Score:   keywordScore,
		},
		ATSCompatibility: models.ATSCompatibility{
			Score:       atsScore,
			Issues:      fallbackATSIssues,
			Suggestions: fallbackATSSuggestions,
		},
		ImprovedBulletPoints:    fallbackBulletPoints,
		ShouldLearnTechnologies: fallbackTechnologies,
		OverallScore:            overallScore,
		Summary: fmt.Sprintf(
			"Good technical foundation with room for improvement in specificity and keyword optimization. "+
				"Your CV matches %d out of %d key terms from the job description. "+
				"Focus on adding quantifiable achievements and industry-specific keywords to improve your ATS compatibility score.",
			len(matched), len(keywords)),
	}

	return report, nil
}

// extractKeywords returns the unique lowercase words longer than 3
// characters from the job description, sorted so repeated runs produce
// identical output.
func extractKeywords(jobDescription string) []string {
	seen := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(jobDescription)) {
		if len(word) >= minKeywordLength {
			seen[word] = true
		}
	}

	keywords := make([]string, 0, len(seen))
	for word := range seen {
		keywords = append(keywords, word)
	}
	sort.Strings(keywords)
	return keywords
}

func truncateList(items []string, limit int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
