package handler

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/dropofflens/dropofflens/errors"
	analysisDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/analysis"
	"github.com/dropofflens/dropofflens/internal/infrastructure/storage"
	"github.com/dropofflens/dropofflens/internal/usecase/ingest"
)

// Upload handles CSV upload HTTP requests
type Upload struct {
	archive      *storage.MinIOClient // nil when archival is disabled
	maxFileBytes int64
	logger       *zap.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(archive *storage.MinIOClient, maxFileBytes int64, logger *zap.Logger) *Upload {
	return &Upload{
		archive:      archive,
		maxFileBytes: maxFileBytes,
		logger:       logger,
	}
}

// UploadCSV handles POST /upload-csv
// @Summary      Upload a CSV of customer feedback
// @Description  Extracts the feedback column and returns all entries plus a preview
// @Tags         Upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV file (max 5MB)"
// @Success      200   {object}  analysis.UploadCSVResponse
// @Failure      400   {object}  map[string]interface{}  "Missing, wrong-type or unparseable file"
// @Router       /upload-csv [post]
func (h *Upload) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("No file uploaded"))
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return HandleError(h.logger, c, apperrors.ErrUploadWrongType())
	}
	if fileHeader.Size > h.maxFileBytes {
		return HandleError(h.logger, c, apperrors.ErrUploadTooLarge(h.maxFileBytes))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInternal(err))
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, h.maxFileBytes+1))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInternal(err))
	}
	if int64(len(content)) > h.maxFileBytes {
		return HandleError(h.logger, c, apperrors.ErrUploadTooLarge(h.maxFileBytes))
	}

	result, err := ingest.ParseCSV(content)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// Archival is best effort; a storage outage must not block ingestion
	if h.archive != nil {
		objectName := uuid.NewString() + ".csv"
		if _, err := h.archive.ArchiveCSV(c.Request().Context(), objectName, content); err != nil {
			h.logger.Warn("Failed to archive uploaded CSV",
				zap.String("filename", fileHeader.Filename),
				zap.Error(err))
		}
	}

	return HandleSuccess(h.logger, c, &analysisDTO.UploadCSVResponse{
		Success:      true,
		Data:         result.Entries,
		Preview:      result.Preview,
		Filename:     fileHeader.Filename,
		TotalEntries: len(result.Entries),
	})
}
