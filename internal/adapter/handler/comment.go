package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	commentDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/comment"
	"github.com/dropofflens/dropofflens/internal/adapter/presenter"
	commentUsecase "github.com/dropofflens/dropofflens/internal/usecase/comment"
)

// Comment handles analysis comment HTTP requests
type Comment struct {
	commentService *commentUsecase.Service
	logger         *zap.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *commentUsecase.Service, logger *zap.Logger) *Comment {
	return &Comment{
		commentService: commentService,
		logger:         logger,
	}
}

// Create handles POST /analysis/:id/comments
// @Summary      Comment on an analysis, optionally scoped to one theme
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Analysis ID"
// @Param        request  body      comment.CreateCommentRequest  true  "Comment"
// @Success      201      {object}  comment.CommentResponse
// @Router       /analysis/{id}/comments [post]
func (h *Comment) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	analysisID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req commentDTO.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	comment, err := h.commentService.Add(c.Request().Context(), analysisID, userID, req.ThemeIndex, req.Content)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccessWithStatus(h.logger, c, 201, presenter.ToCommentResponse(comment))
}

// List handles GET /analysis/:id/comments
// @Summary      List an analysis' comments, oldest first
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis ID"
// @Success      200  {object}  comment.ListCommentsResponse
// @Router       /analysis/{id}/comments [get]
func (h *Comment) List(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return HandleError(h.logger, c, err)
	}
	analysisID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	comments, err := h.commentService.List(c.Request().Context(), analysisID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToListCommentsResponse(comments))
}

// Update handles PATCH /comments/:id
// @Summary      Edit a comment (author only)
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Comment ID"
// @Param        request  body      comment.UpdateCommentRequest  true  "New content"
// @Success      200      {object}  comment.CommentResponse
// @Failure      403      {object}  map[string]interface{}  "Not the author"
// @Router       /comments/{id} [patch]
func (h *Comment) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	commentID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req commentDTO.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	comment, err := h.commentService.Update(c.Request().Context(), commentID, userID, req.Content)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToCommentResponse(comment))
}

// Delete handles DELETE /comments/:id
// @Summary      Delete a comment (author only)
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}  "Not the author"
// @Router       /comments/{id} [delete]
func (h *Comment) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	commentID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.commentService.Delete(c.Request().Context(), commentID, userID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}
