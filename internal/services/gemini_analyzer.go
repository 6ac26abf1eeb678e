package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"cv-checker/internal/models"
)

const (
	analysisTemperature = 0.2
	analysisMaxRetries  = 3
)

// GeminiAnalyzer is the external analysis strategy. Service and parse
// failures are returned as AnalysisError so the engine can fall back to the
// deterministic strategy.
type GeminiAnalyzer struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	normalizer    *Normalizer
	logger        *zap.Logger
}

func NewGeminiAnalyzer(gemini GeminiService, logger *zap.Logger) *GeminiAnalyzer {
	return &GeminiAnalyzer{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		normalizer:    NewNormalizer(),
		logger:        logger,
	}
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisReport, error) {
	prompt := a.promptBuilder.BuildAnalysisPrompt(cvText, jobDescription)

	response, err := a.gemini.GenerateTextWithRetry(ctx, prompt, analysisTemperature, analysisMaxRetries)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	a.logger.Debug("analysis response received", zap.Int("length", len(response)))

	raw, err := parseJSONResponse(response)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	return a.normalizer.Normalize(raw), nil
}

func parseJSONResponse(response string) (map[string]any, error) {
	jsonStr := extractJSON(response)

	var raw map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// extractJSON pulls the first brace-delimited JSON object out of text that
// might contain markdown fences or surrounding prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
