package services

import (
	"encoding/json"
	"strconv"

	"cv-checker/internal/models"
)

// Normalizer enforces the report schema on whichever analysis strategy ran.
// Normalize is total: missing fields get documented defaults, and every
// score is clamped to [0,100].
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Normalize(raw map[string]any) *models.AnalysisReport {
	report := &models.AnalysisReport{
		GrammarSuggestions:      coerceStringList(raw["grammar_suggestions"], "No grammar suggestions available"),
		ImprovedBulletPoints:    coerceStringList(raw["improved_bullet_points"], "No improved bullet points available"),
		ShouldLearnTechnologies: coerceStringList(raw["should_learn_technologies"], "No technology suggestions available"),
		OverallScore:            clampScore(coerceScore(raw["overall_score"])),
		Summary:                 coerceString(raw["summary"], "Analysis summary not available"),
	}

	if km, ok := raw["keyword_match"].(map[string]any); ok {
		report.KeywordMatch = models.KeywordMatch{
			Matched: coerceStringList(km["matched"]),
			Missing: coerceStringList(km["missing"]),
			Score:   clampScore(coerceScore(km["score"])),
		}
	} else {
		report.KeywordMatch = models.KeywordMatch{Matched: []string{}, Missing: []string{}}
	}

	if ats, ok := raw["ats_compatibility"].(map[string]any); ok {
		report.ATSCompatibility = models.ATSCompatibility{
			Score:       clampScore(coerceScore(ats["score"])),
			Issues:      coerceStringList(ats["issues"]),
			Suggestions: coerceStringList(ats["suggestions"]),
		}
	} else {
		report.ATSCompatibility = models.ATSCompatibility{Issues: []string{}, Suggestions: []string{}}
	}

	return report
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// coerceScore is intentionally lenient: the language model occasionally
// returns scores as floats or quoted numbers. Anything non-numeric becomes 0.
func coerceScore(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

// coerceStringList converts a raw list field to []string. When the field is
// absent or unusable and placeholders are given, they become the value;
// otherwise an empty list is returned.
func coerceStringList(value any, placeholders ...string) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}

	if len(placeholders) > 0 {
		return placeholders
	}
	return []string{}
}

func coerceString(value any, fallback string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return fallback
}
