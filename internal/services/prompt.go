package services

import "fmt"

const (
	maxCVTextChars  = 3000
	maxJobDescChars = 1000
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the CV analysis prompt. CV text and job
// description are truncated to keep the request within a predictable size.
func (pb *PromptBuilder) BuildAnalysisPrompt(cvText, jobDescription string) string {
	return fmt.Sprintf(`You are an expert CV/resume analyst and career coach.
Analyze this CV against the job description and provide comprehensive feedback in the following JSON format.

CV Text:
%s

Job Description:
%s

Please provide analysis in this exact JSON format:
{
  "grammar_suggestions": ["suggestion1", "suggestion2"],
  "keyword_match": {
    "matched": ["keyword1", "keyword2"],
    "missing": ["keyword3", "keyword4"],
    "score": 75
  },
  "ats_compatibility": {
    "score": 80,
    "issues": ["issue1", "issue2"],
    "suggestions": ["suggestion1", "suggestion2"]
  },
  "improved_bullet_points": ["bullet point 1", "bullet point 2"],
  "should_learn_technologies": ["technology 1", "technology 2"],
  "overall_score": 78,
  "summary": "Brief summary of the analysis"
}

Focus on:
- Grammar and clarity improvements
- Keyword matching between CV and job description
- ATS (Applicant Tracking System) compatibility issues
- Actionable improvement suggestions
- Technologies the candidate should learn to get this job
- Overall score based on all factors

Be specific and actionable in your feedback. Ensure the response is valid JSON.`,
		truncate(cvText, maxCVTextChars),
		truncate(jobDescription, maxJobDescChars),
	)
}

func truncate(text string, limit int) string {
	if len(text) > limit {
		return text[:limit]
	}
	return text
}
