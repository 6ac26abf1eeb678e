package services

import (
	"context"

	"go.uber.org/zap"

	"cv-checker/internal/models"
)

// Analyzer is the single contract both analysis strategies implement.
type Analyzer interface {
	Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisReport, error)
}

// AnalysisEngine selects the strategy once at construction: the external
// strategy when a credential is configured, the deterministic fallback
// otherwise. When the external strategy errors the engine transparently
// reruns the fallback, so Analyze never fails.
type AnalysisEngine struct {
	primary  Analyzer
	fallback *FallbackAnalyzer
	logger   *zap.Logger
}

func NewAnalysisEngine(apiKey string, logger *zap.Logger) (*AnalysisEngine, error) {
	engine := &AnalysisEngine{
		fallback: NewFallbackAnalyzer(),
		logger:   logger,
	}

	if apiKey == "" {
		logger.Warn("no language-model API key configured, using deterministic analysis only")
		return engine, nil
	}

	gemini, err := NewGeminiService(apiKey, logger)
	if err != nil {
		return nil, err
	}
	engine.primary = NewGeminiAnalyzer(gemini, logger)
	logger.Info("language-model analysis enabled")

	return engine, nil
}

func (e *AnalysisEngine) Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisReport, error) {
	if e.primary != nil {
		report, err := e.primary.Analyze(ctx, cvText, jobDescription)
		if err == nil {
			return report, nil
		}
		e.logger.Error("external analysis failed, falling back to deterministic strategy", zap.Error(err))
	}

	return e.fallback.Analyze(ctx, cvText, jobDescription)
}
