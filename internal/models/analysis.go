package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is one completed analysis, keyed to the submitting user by
// an opaque identifier. The full report is stored as serialized JSON.
type AnalysisRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         string    `gorm:"type:text;index" json:"user_id"`
	Filename       string    `gorm:"type:text" json:"filename"`
	FileSize       int64     `json:"file_size"`
	ContentType    string    `gorm:"type:text" json:"content_type"`
	JobDescription string    `gorm:"type:text" json:"job_description"`
	Report         string    `gorm:"type:text" json:"-"`
	OverallScore   int       `json:"overall_score"`
	CreatedAt      time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

type AnalysisHistoryItem struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Filename     string    `json:"filename"`
	OverallScore int       `json:"overall_score"`
}

type AnalysisHistoryResponse struct {
	UserID   string                `json:"user_id"`
	Analyses []AnalysisHistoryItem `json:"analyses"`
	Total    int64                 `json:"total"`
}
