package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cv-checker/internal/models"
	"cv-checker/internal/repositories"
	"cv-checker/internal/services"
)

type AnalyzeHandler struct {
	validator    services.FileValidator
	storage      services.StorageService
	extractor    services.TextExtractor
	analyzer     services.Analyzer
	analysisRepo repositories.AnalysisRepository
	logger       *zap.Logger
}

func NewAnalyzeHandler(
	validator services.FileValidator,
	storage services.StorageService,
	extractor services.TextExtractor,
	analyzer services.Analyzer,
	analysisRepo repositories.AnalysisRepository,
	logger *zap.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		validator:    validator,
		storage:      storage,
		extractor:    extractor,
		analyzer:     analyzer,
		analysisRepo: analysisRepo,
		logger:       logger,
	}
}

// HandleAnalyzeCV handles POST /api/analyze-cv.
//
// Pipeline: validate → temp save → extract → analyze → normalize → respond,
// with the temp file removed on every exit path.
func (h *AnalyzeHandler) HandleAnalyzeCV(c *fiber.Ctx) error {
	fh, err := c.FormFile("cv_file")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "cv_file is required")
	}

	jobDescription := c.FormValue("job_description")
	if strings.TrimSpace(jobDescription) == "" {
		return errorResponse(c, fiber.StatusBadRequest, "job_description is required")
	}
	userID := c.FormValue("user_id")

	h.logger.Info("starting CV analysis", zap.String("filename", fh.Filename))

	if err := h.validator.Validate(fh); err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			return errorResponse(c, fiber.StatusBadRequest, vErr.Reason)
		}
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	tempPath, cleanup, err := h.storage.SaveTemp(fh)
	if err != nil {
		h.logger.Error("failed to stage uploaded file", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	defer cleanup()

	contentType := fh.Header.Get("Content-Type")
	text, err := h.extractor.Extract(tempPath, contentType)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			h.logger.Warn("text extraction failed", zap.String("filename", fh.Filename), zap.Error(err))
		}
		return errorResponse(c, fiber.StatusBadRequest,
			"Could not extract text from the document. Please ensure it's a valid file.")
	}

	if inspection := h.extractor.InspectContent(text); !inspection.Valid {
		h.logger.Warn("extracted content quality check flagged issues",
			zap.String("filename", fh.Filename),
			zap.Strings("issues", inspection.Issues))
	}

	report, err := h.analyzer.Analyze(c.Context(), text, jobDescription)
	if err != nil {
		h.logger.Error("analysis failed", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	report.Metadata = map[string]any{
		"filename":           h.validator.SanitizeFilename(fh.Filename),
		"file_size":          fh.Size,
		"file_type":          contentType,
		"analysis_timestamp": time.Now().UTC().Format(time.RFC3339),
		"user_id":            userID,
	}

	if userID != "" {
		if err := h.persistRecord(userID, fh.Filename, contentType, fh.Size, jobDescription, report); err != nil {
			// History persistence is best effort; the analysis already succeeded.
			h.logger.Error("failed to persist analysis record", zap.Error(err))
		}
	}

	h.logger.Info("CV analysis completed",
		zap.String("filename", fh.Filename),
		zap.Int("overall_score", report.OverallScore))
	return c.JSON(report)
}

func (h *AnalyzeHandler) persistRecord(userID, filename, contentType string, size int64, jobDescription string, report *models.AnalysisReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}

	record := &models.AnalysisRecord{
		ID:             uuid.New(),
		UserID:         userID,
		Filename:       h.validator.SanitizeFilename(filename),
		FileSize:       size,
		ContentType:    contentType,
		JobDescription: jobDescription,
		Report:         string(reportJSON),
		OverallScore:   report.OverallScore,
		CreatedAt:      time.Now(),
	}

	return h.analysisRepo.Create(record)
}

// HandleAnalysisHistory handles GET /api/analysis-history/:user_id.
func (h *AnalyzeHandler) HandleAnalysisHistory(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "user_id is required")
	}

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	records, err := h.analysisRepo.FindByUser(userID, limit)
	if err != nil {
		h.logger.Error("failed to fetch analysis history", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error retrieving analysis history")
	}

	total, err := h.analysisRepo.CountByUser(userID)
	if err != nil {
		h.logger.Error("failed to count analyses", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error retrieving analysis history")
	}

	items := make([]models.AnalysisHistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, models.AnalysisHistoryItem{
			ID:           record.ID.String(),
			Timestamp:    record.CreatedAt,
			Filename:     record.Filename,
			OverallScore: record.OverallScore,
		})
	}

	return c.JSON(models.AnalysisHistoryResponse{
		UserID:   userID,
		Analyses: items,
		Total:    total,
	})
}

// HandleDeleteAnalysis handles DELETE /api/analysis/:analysis_id.
func (h *AnalyzeHandler) HandleDeleteAnalysis(c *fiber.Ctx) error {
	analysisID, err := uuid.Parse(c.Params("analysis_id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid analysis_id format")
	}

	userID := c.Query("user_id")
	if userID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "user_id is required")
	}

	if err := h.analysisRepo.DeleteForUser(analysisID, userID); err != nil {
		if errors.Is(err, repositories.ErrAnalysisNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Analysis not found")
		}
		h.logger.Error("failed to delete analysis", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error deleting analysis")
	}

	return c.JSON(fiber.Map{
		"message": "Analysis " + analysisID.String() + " deleted successfully",
	})
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":       message,
		"status_code": status,
	})
}
