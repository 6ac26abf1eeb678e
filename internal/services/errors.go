package services

import "fmt"

// ValidationError indicates the uploaded file failed a pre-processing check.
// Always surfaced to the client as a 400 with the specific reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ExtractionError indicates text could not be extracted from the document.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// AnalysisError indicates the external analysis service failed or returned
// an unparseable response. Callers fall back to the deterministic strategy;
// this error never reaches the client.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis service failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
