package handler

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/dropofflens/dropofflens/errors"
	analysisDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/analysis"
	"github.com/dropofflens/dropofflens/internal/adapter/presenter"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	analysisUsecase "github.com/dropofflens/dropofflens/internal/usecase/analysis"
	"github.com/dropofflens/dropofflens/internal/usecase/report"
	teamUsecase "github.com/dropofflens/dropofflens/internal/usecase/team"
)

// Analysis handles feedback analysis HTTP requests
type Analysis struct {
	analysisService *analysisUsecase.Service
	teamService     *teamUsecase.Service
	reportService   *report.Service
	logger          *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	analysisService *analysisUsecase.Service,
	teamService *teamUsecase.Service,
	reportService *report.Service,
	logger *zap.Logger,
) *Analysis {
	return &Analysis{
		analysisService: analysisService,
		teamService:     teamService,
		reportService:   reportService,
		logger:          logger,
	}
}

// Analyze handles POST /analyze-feedback
// @Summary      Run theme extraction on a feedback batch
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      analysis.AnalyzeRequest  true  "Feedback batch"
// @Success      200      {object}  analysis.AnalysisResponse
// @Failure      502      {object}  map[string]interface{}  "Extraction failed"
// @Router       /analyze-feedback [post]
func (h *Analysis) Analyze(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req analysisDTO.AnalyzeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	var teamID *uuid.UUID
	if req.TeamID != nil {
		parsed, err := uuid.Parse(*req.TeamID)
		if err != nil {
			return HandleError(h.logger, c, apperrors.ErrInvalidArgument("Invalid team_id"))
		}
		isMember, err := h.teamService.IsMember(c.Request().Context(), parsed, userID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		if !isMember {
			return HandleError(h.logger, c, apperrors.ErrPermissionDenied("attach analysis to team"))
		}
		teamID = &parsed
	}

	record, results, err := h.analysisService.Analyze(c.Request().Context(), userID, teamID, req.Title, req.Description, req.FeedbackEntries)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToAnalysisResponse(record, results))
}

// Get handles GET /analysis/:id
// @Summary      Fetch an analysis with its results
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis ID"
// @Success      200  {object}  analysis.AnalysisResponse
// @Router       /analysis/{id} [get]
func (h *Analysis) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	record, results, err := h.analysisService.Get(c.Request().Context(), id, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToAnalysisResponse(record, results))
}

// Update handles PATCH /analysis/:id
// @Summary      Update an analysis (title, description, sharing, edited themes)
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Analysis ID"
// @Param        request  body      analysis.UpdateAnalysisRequest  true  "Fields to change"
// @Success      200      {object}  analysis.AnalysisResponse
// @Failure      409      {object}  map[string]interface{}  "Concurrent modification"
// @Router       /analysis/{id} [patch]
func (h *Analysis) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req analysisDTO.UpdateAnalysisRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	input := analysisUsecase.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		IsShared:    req.IsShared,
	}

	if req.SharedWith != nil {
		input.SharedWith = make([]uuid.UUID, 0, len(req.SharedWith))
		for _, raw := range req.SharedWith {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				return HandleError(h.logger, c, apperrors.ErrInvalidArgument("Invalid user id in shared_with"))
			}
			input.SharedWith = append(input.SharedWith, parsed)
		}
	}

	if req.Results != nil {
		input.Results = toResultsEntity(req.Results)
	}

	record, err := h.analysisService.Update(c.Request().Context(), id, userID, input)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToAnalysisResponse(record, nil))
}

// Export handles GET /analysis/:id/pdf
// @Summary      Export a completed analysis as a standalone HTML report
// @Tags         Analysis
// @Produce      html
// @Security     BearerAuth
// @Param        id   path  string  true  "Analysis ID"
// @Success      200  {string}  string  "HTML document"
// @Failure      404  {object}  map[string]interface{}  "Analysis has no results yet"
// @Router       /analysis/{id}/pdf [get]
func (h *Analysis) Export(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	doc, err := h.reportService.Export(c.Request().Context(), id, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	return c.HTMLBlob(200, doc.HTML)
}

// UserAnalyses handles GET /user/analyses
// @Summary      List the authenticated user's analyses, newest first
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max results (default 50)"
// @Success      200    {object}  analysis.ListAnalysesResponse
// @Router       /user/analyses [get]
func (h *Analysis) UserAnalyses(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	analyses, err := h.analysisService.UserAnalyses(c.Request().Context(), userID, queryLimit(c))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToListAnalysesResponse(analyses))
}

// TeamAnalyses handles GET /teams/:id/analyses
// @Summary      List a team's analyses, newest first
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Team ID"
// @Param        limit  query     int     false  "Max results (default 50)"
// @Success      200    {object}  analysis.ListAnalysesResponse
// @Router       /teams/{id}/analyses [get]
func (h *Analysis) TeamAnalyses(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	isMember, err := h.teamService.IsMember(c.Request().Context(), teamID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if !isMember {
		return HandleError(h.logger, c, apperrors.ErrPermissionDenied("view team analyses"))
	}

	analyses, err := h.analysisService.TeamAnalyses(c.Request().Context(), teamID, queryLimit(c))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToListAnalysesResponse(analyses))
}

// SharedAnalyses handles GET /user/shared-analyses
// @Summary      List analyses shared with the authenticated user
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  analysis.ListAnalysesResponse
// @Router       /user/shared-analyses [get]
func (h *Analysis) SharedAnalyses(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	analyses, err := h.analysisService.SharedAnalyses(c.Request().Context(), userID, queryLimit(c))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToListAnalysesResponse(analyses))
}

func queryLimit(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 50 {
		return 50
	}
	return limit
}

func toResultsEntity(req *analysisDTO.ResultsUpdate) *entities.AnalysisResults {
	themes := make([]entities.FeedbackTheme, 0, len(req.Themes))
	for _, t := range req.Themes {
		themes = append(themes, entities.FeedbackTheme{
			ID:              t.ID,
			Name:            t.Name,
			Summary:         t.Summary,
			Percentage:      t.Percentage,
			Quotes:          t.Quotes,
			SuggestedAction: t.SuggestedAction,
			IsEdited:        t.IsEdited,
		})
	}
	return &entities.AnalysisResults{
		Themes:         themes,
		TotalFeedback:  req.TotalFeedback,
		ProcessingTime: req.ProcessingTime,
	}
}
