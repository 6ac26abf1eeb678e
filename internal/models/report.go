package models

// KeywordMatch describes the overlap between the CV and the job description.
type KeywordMatch struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Score   int      `json:"score"`
}

// ATSCompatibility estimates how well the document survives automated
// resume-screening parsers.
type ATSCompatibility struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// AnalysisReport is the normalized analysis result returned to the client.
// All three scores are always present and within [0,100] regardless of
// which analysis strategy produced the raw result.
type AnalysisReport struct {
	GrammarSuggestions      []string       `json:"grammar_suggestions"`
	KeywordMatch            KeywordMatch   `json:"keyword_match"`
	ATSCompatibility        ATSCompatibility `json:"ats_compatibility"`
	ImprovedBulletPoints    []string       `json:"improved_bullet_points"`
	ShouldLearnTechnologies []string       `json:"should_learn_technologies"`
	OverallScore            int            `json:"overall_score"`
	Summary                 string         `json:"summary"`
	Metadata                map[string]any `json:"metadata,omitempty"`
}
